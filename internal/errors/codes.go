package errors

// Code 是稳定错误码（字符串），供脚本与 agent 判断。
// 只增不改、不复用旧含义。
type Code string

const (
	// Config / args
	CodeCfgNotFound Code = "KEYRESET_CFG_NOT_FOUND"
	CodeCfgInvalid  Code = "KEYRESET_CFG_INVALID"

	// OS secret store
	CodeStoreUnavailable  Code = "KEYRESET_STORE_UNAVAILABLE"
	CodeStoreReadFailed   Code = "KEYRESET_STORE_READ_FAILED"
	CodeStoreWriteFailed  Code = "KEYRESET_STORE_WRITE_FAILED"
	CodeStoreDeleteFailed Code = "KEYRESET_STORE_DELETE_FAILED"

	// Backup file
	CodeBackupNotFound    Code = "KEYRESET_BACKUP_NOT_FOUND"
	CodeBackupInvalid     Code = "KEYRESET_BACKUP_INVALID"
	CodeBackupWriteFailed Code = "KEYRESET_BACKUP_WRITE_FAILED"

	// verify
	CodeVerifyMismatch Code = "KEYRESET_VERIFY_MISMATCH"

	// 用户在确认提示中拒绝
	CodeAborted Code = "KEYRESET_ABORTED"

	// Internal
	CodeInternal Code = "KEYRESET_INTERNAL"
)

func AllCodes() []Code {
	return []Code{
		CodeCfgNotFound,
		CodeCfgInvalid,
		CodeStoreUnavailable,
		CodeStoreReadFailed,
		CodeStoreWriteFailed,
		CodeStoreDeleteFailed,
		CodeBackupNotFound,
		CodeBackupInvalid,
		CodeBackupWriteFailed,
		CodeVerifyMismatch,
		CodeAborted,
		CodeInternal,
	}
}
