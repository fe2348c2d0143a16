package service

import "errors"

// 业务层通用错误，handler 根据错误类型映射到合适的 HTTP 状态码。
var (
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email/password")
	ErrProgramNotFound    = errors.New("program not found")
	ErrNotOwner           = errors.New("not the program owner")
)
