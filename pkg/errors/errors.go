// Package errors 提供统一错误辅助与工具失败分类，不依赖 internal
package errors

import (
	"errors"
	"fmt"
)

// 常用哨兵错误（可按需扩展错误码）
var (
	ErrNotFound   = errors.New("not found")
	ErrInvalidArg = errors.New("invalid argument")
	ErrEmptyQuery = errors.New("empty query")
)

// Kind 工具/检索失败分类，决定编排层的处理路径
type Kind string

const (
	// KindValidation 参数或工具名不合法，在 agent loop 内纠正，不暴露给客户
	KindValidation Kind = "validation_error"
	// KindEmptyResult 查到了零条结果，不是失败
	KindEmptyResult Kind = "empty_result"
	// KindUpstream 模型或外部存储不可达/超时，唯一允许面向客户的失败类别
	KindUpstream Kind = "upstream_failure"
	// KindParse 模型输出不符合预期形状（路由标签、抽取 JSON）
	KindParse Kind = "parse_error"
)

// Classified 带分类的错误
type Classified struct {
	Kind Kind
	Err  error
}

func (e *Classified) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Classified) Unwrap() error { return e.Err }

// Classify 构造带分类的错误
func Classify(kind Kind, err error) error {
	return &Classified{Kind: kind, Err: err}
}

// KindOf 返回错误的分类；未分类的一律按 upstream_failure 处理
func KindOf(err error) Kind {
	var c *Classified
	if errors.As(err, &c) {
		return c.Kind
	}
	return KindUpstream
}

// Wrap 包装错误并附加消息
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf 带格式的 Wrap
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
