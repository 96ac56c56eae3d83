// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package prompt 提示词模板：按 (agent, channel, locale) 解析，带版本元数据。
// 解析顺序：精确匹配 → 渠道回退 → 语言回退 → agent 默认。
package prompt

import (
	"fmt"
	"sync"
)

// Template 单条提示词模板
type Template struct {
	Agent   string
	Channel string
	Locale  string
	Version string
	Text    string
}

// Library 模板库
type Library struct {
	mu        sync.RWMutex
	templates map[string]Template
}

func key(agent, channel, locale string) string {
	return agent + "|" + channel + "|" + locale
}

// NewLibrary 创建模板库并装载内置默认模板
func NewLibrary() *Library {
	l := &Library{templates: make(map[string]Template)}
	for _, t := range builtinTemplates {
		l.Put(t)
	}
	return l
}

// Put 登记模板，同键覆盖
func (l *Library) Put(t Template) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.templates[key(t.Agent, t.Channel, t.Locale)] = t
}

// Resolve 解析模板。找不到任何候选时返回错误而非空模板。
func (l *Library) Resolve(agent, channel, locale string) (Template, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, k := range []string{
		key(agent, channel, locale),
		key(agent, "", locale),
		key(agent, channel, ""),
		key(agent, "", ""),
	} {
		if t, ok := l.templates[k]; ok {
			return t, nil
		}
	}
	return Template{}, fmt.Errorf("没有匹配的提示词模板: agent=%s channel=%s locale=%s", agent, channel, locale)
}
