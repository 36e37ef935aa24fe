package wizard

// User-facing message text.
const (
	msgCreateAcknowledged = "Request to create data frame analytics %s acknowledged."
	msgStartAcknowledged  = "Request to start data frame analytics %s acknowledged."
	msgCreateFailed       = "An error occurred creating the data frame analytics job:"
	msgStartFailed        = "An error occurred starting the data frame analytics job:"
	msgDataViewsFailed    = "An error occurred getting the existing data view names:"
	msgEstimateFailed     = "An error occurred estimating the model memory limit:"
	msgSwitchToFormFailed = "The configuration could not be loaded into the form:"
	msgSwitchToRawFailed  = "The form could not be converted to a job configuration:"
	msgUnsupportedFields  = "This configuration uses settings the form does not support and can only be edited here:"
)
