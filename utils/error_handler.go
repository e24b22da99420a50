package utils

import (
	"context"
	"errors"
)

// IsCanceled 检查错误是否由客户端断开或超时引起
func IsCanceled(err error) bool {
	return err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
}
