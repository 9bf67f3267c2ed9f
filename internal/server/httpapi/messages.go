package httpapi

// Response texts.
const (
	msgInternal           = "Internal server error"
	msgValidation         = "Validation error"
	msgUnauthorized       = "Unauthorized"
	msgUnauthenticated    = "Unauthenticated."
	msgInvalidCredentials = "Invalid Credentials"
	msgForbidden          = "Forbidden"
	msgReportForbidden    = "This report requires an elevated role."
	msgRouteNotFound      = "Not found"
	msgRouteNotFoundErr   = "The requested resource does not exist."
	msgMethodNotAllowed   = "Method not allowed"

	msgRegistered         = "User registered successfully."
	msgRegistrationFailed = "Registration failed."
	msgLoggedIn           = "Login successful"
	msgLoginFailed        = "Login failed"
	msgLoggedOut          = "Logged out successfully"
	msgLogoutFailed       = "Logout failed"

	msgTaskCreated      = "Task created successfully"
	msgTaskCreateFailed = "Failed to create task"
	msgTasksListed      = "Tasks retrieved successfully"
	msgTasksListFailed  = "Failed to retrieve tasks"
	msgTaskFound        = "Task retrieved successfully"
	msgTaskGetFailed    = "Failed to retrieve task"
	msgTaskNotFound     = "Task not found"
	msgTaskUpdated      = "Task updated successfully"
	msgTaskUpdateFailed = "Failed to update task"
	msgTaskDeleted      = "Task deleted successfully"
	msgTaskDeleteFailed = "Failed to delete task"
	msgAttachmentOrphan = "The previous attachment was removed but the task could not be updated."
	msgCompletedCount   = "Completed task count per user fetched successfully"
	msgCompletedNone    = "No completed tasks found"
	msgCompletedNoneErr = "No data for completed tasks"
	msgCompletedFailed  = "Failed to fetch completed task counts"
)
