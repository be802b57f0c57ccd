package errors

// ExitCode 是进程退出码（稳定契约）。
type ExitCode int

const (
	ExitOK ExitCode = 0

	// 2: 参数/配置错误
	ExitConfig ExitCode = 2

	// 3: OS secret store 读写删失败
	ExitStore ExitCode = 3

	// 4: 备份文件缺失、损坏或无法写入
	ExitBackup ExitCode = 4

	// 5: verify 发现不一致
	ExitVerify ExitCode = 5

	// 6: 用户取消
	ExitAborted ExitCode = 6

	// 10: 内部错误
	ExitInternal ExitCode = 10
)

func ExitCodeFor(code Code) ExitCode {
	switch code {
	case CodeCfgNotFound, CodeCfgInvalid:
		return ExitConfig
	case CodeStoreUnavailable, CodeStoreReadFailed, CodeStoreWriteFailed, CodeStoreDeleteFailed:
		return ExitStore
	case CodeBackupNotFound, CodeBackupInvalid, CodeBackupWriteFailed:
		return ExitBackup
	case CodeVerifyMismatch:
		return ExitVerify
	case CodeAborted:
		return ExitAborted
	case CodeInternal:
		fallthrough
	default:
		return ExitInternal
	}
}
