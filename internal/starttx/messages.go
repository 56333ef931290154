package starttx

// 文案 key
const (
	KeyStartErrorTitle       = "chargers.action_error.transaction_start_title"
	KeyStationInactive       = "chargers.action_error.transaction_start_chargingStation_inactive"
	KeyConnectorNotAvailable = "chargers.action_error.transaction_start_not_available"
	KeyTransactionInProgress = "chargers.action_error.transaction_in_progress"
	KeyConnectorNotFound     = "chargers.action_error.transaction_start_connector_not_found"
	KeyAdminChoiceTitle      = "chargers.start_transaction_admin_title"
	KeyAdminChoiceMessage    = "chargers.start_transaction_admin_message"
	KeyUserSelectTitle       = "chargers.start_transaction_user_select_title"
	KeyUserSelectButton      = "chargers.start_transaction_user_select_button"
	KeyConfirmTitle          = "chargers.start_transaction_title"
	KeyConfirmMessage        = "chargers.start_transaction_confirm"
	KeyMissingActiveTag      = "chargers.start_transaction_missing_active_tag"
	KeyStartSuccess          = "chargers.start_transaction_success"
	KeyStartError            = "chargers.start_transaction_error"
	KeyInvalidToken          = "general.invalid_token"
	KeyNotAuthorized         = "general.not_authorized"
	KeyUnexpectedError       = "general.unexpected_error"
	ParamChargeBoxID         = "chargeBoxID"
	ParamUserName            = "userName"
	RouteLogin               = "/auth/login"
)

func msg(key string) Message { return Message{Key: key} }

func startErrorNotice(key string) Notice {
	return Notice{Title: msg(KeyStartErrorTitle), Message: msg(key)}
}
