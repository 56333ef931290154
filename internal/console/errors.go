package console

import "errors"

var (
	// ErrRunNotFound 运行不存在或已结束
	ErrRunNotFound = errors.New("start run not found or already finished")
	// ErrNoPendingPrompt 当前没有等待应答的提示
	ErrNoPendingPrompt = errors.New("no pending prompt")
	// ErrPromptMismatch 应答的提示 ID 与当前提示不一致
	ErrPromptMismatch = errors.New("prompt id does not match the pending prompt")
	// ErrInvalidAnswer 应答内容不在可选范围
	ErrInvalidAnswer = errors.New("answer not allowed for the pending prompt")
	// ErrShuttingDown 控制台正在关闭
	ErrShuttingDown = errors.New("console is shutting down")
)
