package github

import "errors"

// GitHub API 错误分类，调用方用 errors.Is 判断
var (
	ErrInvalidToken = errors.New("GitHub Token 无效")
	ErrForbidden    = errors.New("GitHub API 拒绝访问")
	ErrNotFound     = errors.New("GitHub 仓库不存在")
	ErrBadRequest   = errors.New("GitHub API 请求无效")
	ErrRateLimited  = errors.New("GitHub API 调用次数超限")
	ErrServerError  = errors.New("GitHub API 服务端错误")
	ErrTransport    = errors.New("GitHub API 连接失败")
)

// IsRetryable 仅服务端错误与传输错误允许重试
func IsRetryable(err error) bool {
	return errors.Is(err, ErrServerError) || errors.Is(err, ErrTransport)
}
