package api

import "google.golang.org/protobuf/types/known/timestamppb"

type Empty struct{}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}

// User is the principal as seen by the client.
type User struct {
	UID           string `json:"uid"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
	DisplayName   string `json:"displayName,omitempty"`
	PhotoURL      string `json:"photoUrl,omitempty"`
	PhoneNumber   string `json:"phoneNumber,omitempty"`
	Provider      string `json:"provider"`
}

// Session is returned by every sign-in flavor.
type Session struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName,omitempty"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type StartPhoneSignInRequest struct {
	PhoneNumber string `json:"phoneNumber"`
}

type StartPhoneSignInResponse struct {
	VerificationID string `json:"verificationId"`
}

type ConfirmPhoneSignInRequest struct {
	VerificationID string `json:"verificationId"`
	Code           string `json:"code"`
}

type StartFederatedSignInResponse struct {
	AuthURL string `json:"authUrl"`
	State   string `json:"state"`
}

type GetRedirectResultRequest struct {
	State string `json:"state"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type RefreshTokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type SendPasswordResetRequest struct {
	Email string `json:"email"`
}

type SignOutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ChangePasswordRequest may leave CurrentPassword empty right after sign-in.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword,omitempty"`
	NewPassword     string `json:"newPassword"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"displayName"`
	PhotoURL    string `json:"photoUrl"`
}

type Medication struct {
	ID        string                 `json:"id,omitempty"`
	Name      string                 `json:"name"`
	Dosage    string                 `json:"dosage"`
	Times     []string               `json:"times"`
	Repeat    string                 `json:"repeat"`
	StartDate *timestamppb.Timestamp `json:"startDate"`
	EndDate   *timestamppb.Timestamp `json:"endDate,omitempty"`
	Status    string                 `json:"status"`
	ImageURL  string                 `json:"imageUrl,omitempty"`
	ImagePath string                 `json:"imagePath,omitempty"`
	UpdatedAt *timestamppb.Timestamp `json:"updatedAt,omitempty"`
}

type DeleteMedicationRequest struct {
	ID string `json:"id"`
}

type LogEntry struct {
	ID             string                 `json:"id,omitempty"`
	MedicationID   string                 `json:"medicationId"`
	MedicationName string                 `json:"medicationName"`
	TakenAt        *timestamppb.Timestamp `json:"takenAt"`
	Status         string                 `json:"status"`
	Note           string                 `json:"note,omitempty"`
}

type Guardian struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Permissions []string `json:"permissions"`
	Status      string   `json:"status"`
}

type AddGuardianRequest struct {
	Email       string   `json:"email"`
	Permissions []string `json:"permissions"`
}

type CreateUploadURLRequest struct {
	Key         string `json:"key"`
	ContentType string `json:"contentType"`
}

// CreateUploadURLResponse carries the presigned PUT and the GET URL to
// store on the record once the upload succeeds.
type CreateUploadURLResponse struct {
	UploadURL   string `json:"uploadUrl"`
	DownloadURL string `json:"downloadUrl"`
}

type GetDownloadURLRequest struct {
	Key string `json:"key"`
}

type GetDownloadURLResponse struct {
	URL string `json:"url"`
}

type DeleteObjectRequest struct {
	Key string `json:"key"`
}

type RequestInsightsRequest struct {
	Query string      `json:"query"`
	Logs  []*LogEntry `json:"logs"`
}

type RequestInsightsResponse struct {
	Answer string `json:"answer"`
}

type WatchRequest struct{}

// Snapshots always carry the whole collection.
type MedicationsSnapshot struct {
	Medications []*Medication `json:"medications"`
}

type LogsSnapshot struct {
	Logs []*LogEntry `json:"logs"`
}

type GuardiansSnapshot struct {
	Guardians []*Guardian `json:"guardians"`
}
