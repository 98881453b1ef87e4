package handler

const (
	errInternalServer     = "Internal server error"
	errInvalidCredentials = "invalid email or password"
	errDuplicateEmail     = "email is already registered"
	errInvalidCode        = "verification code is invalid or expired"
	errEmailDispatch      = "there was an error sending email"
	errLaptopNotFound     = "Laptop not found"
	errUploadFailed       = "failed to upload images"
	errImagesRequired     = "at least one image is required"
)
