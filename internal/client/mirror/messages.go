package mirror

// Notifications sent when a write fails.
const (
	MsgSaveFailed        = "Failed to save medication."
	MsgUpdateFailed      = "Failed to update medication."
	MsgDeleteFailed      = "Failed to delete medication."
	MsgLogFailed         = "Failed to log dose."
	MsgAddGuardianFailed = "Failed to add guardian."
)
