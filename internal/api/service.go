package api

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "medtrack.v1.MedTrack"

// Method names.
const (
	MethodPing                  = "Ping"
	MethodRegister              = "Register"
	MethodSignIn                = "SignIn"
	MethodStartPhoneSignIn      = "StartPhoneSignIn"
	MethodConfirmPhoneSignIn    = "ConfirmPhoneSignIn"
	MethodStartFederatedSignIn  = "StartFederatedSignIn"
	MethodGetRedirectResult     = "GetRedirectResult"
	MethodRefreshToken          = "RefreshToken"
	MethodSendPasswordReset     = "SendPasswordReset"
	MethodSignOut               = "SignOut"
	MethodGetCurrentUser        = "GetCurrentUser"
	MethodSendVerificationEmail = "SendVerificationEmail"
	MethodChangePassword        = "ChangePassword"
	MethodUpdateProfile         = "UpdateProfile"
	MethodAddMedication         = "AddMedication"
	MethodUpdateMedication      = "UpdateMedication"
	MethodDeleteMedication      = "DeleteMedication"
	MethodAddLog                = "AddLog"
	MethodAddGuardian           = "AddGuardian"
	MethodCreateUploadURL       = "CreateUploadURL"
	MethodGetDownloadURL        = "GetDownloadURL"
	MethodDeleteObject          = "DeleteObject"
	MethodRequestInsights       = "RequestInsights"
	MethodWatchMedications      = "WatchMedications"
	MethodWatchLogs             = "WatchLogs"
	MethodWatchGuardians        = "WatchGuardians"
)

// FullMethod returns the gRPC path of a method, e.g. "/medtrack.v1.MedTrack/Ping".
func FullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

// PublicMethods need no access token.
var PublicMethods = map[string]bool{
	FullMethod(MethodPing):                 true,
	FullMethod(MethodRegister):             true,
	FullMethod(MethodSignIn):               true,
	FullMethod(MethodStartPhoneSignIn):     true,
	FullMethod(MethodConfirmPhoneSignIn):   true,
	FullMethod(MethodStartFederatedSignIn): true,
	FullMethod(MethodGetRedirectResult):    true,
	FullMethod(MethodRefreshToken):         true,
	FullMethod(MethodSendPasswordReset):    true,
}

type MedTrackServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	Register(context.Context, *RegisterRequest) (*Session, error)
	SignIn(context.Context, *SignInRequest) (*Session, error)
	StartPhoneSignIn(context.Context, *StartPhoneSignInRequest) (*StartPhoneSignInResponse, error)
	ConfirmPhoneSignIn(context.Context, *ConfirmPhoneSignInRequest) (*Session, error)
	StartFederatedSignIn(context.Context, *Empty) (*StartFederatedSignInResponse, error)
	GetRedirectResult(context.Context, *GetRedirectResultRequest) (*Session, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*RefreshTokenResponse, error)
	SendPasswordReset(context.Context, *SendPasswordResetRequest) (*Empty, error)

	SignOut(context.Context, *SignOutRequest) (*Empty, error)
	GetCurrentUser(context.Context, *Empty) (*User, error)
	SendVerificationEmail(context.Context, *Empty) (*Empty, error)
	ChangePassword(context.Context, *ChangePasswordRequest) (*Empty, error)
	UpdateProfile(context.Context, *UpdateProfileRequest) (*User, error)

	AddMedication(context.Context, *Medication) (*Medication, error)
	UpdateMedication(context.Context, *Medication) (*Medication, error)
	DeleteMedication(context.Context, *DeleteMedicationRequest) (*Empty, error)
	AddLog(context.Context, *LogEntry) (*LogEntry, error)
	AddGuardian(context.Context, *AddGuardianRequest) (*Guardian, error)

	CreateUploadURL(context.Context, *CreateUploadURLRequest) (*CreateUploadURLResponse, error)
	GetDownloadURL(context.Context, *GetDownloadURLRequest) (*GetDownloadURLResponse, error)
	DeleteObject(context.Context, *DeleteObjectRequest) (*Empty, error)

	RequestInsights(context.Context, *RequestInsightsRequest) (*RequestInsightsResponse, error)

	WatchMedications(*WatchRequest, grpc.ServerStreamingServer[MedicationsSnapshot]) error
	WatchLogs(*WatchRequest, grpc.ServerStreamingServer[LogsSnapshot]) error
	WatchGuardians(*WatchRequest, grpc.ServerStreamingServer[GuardiansSnapshot]) error
}

func RegisterMedTrackServer(s grpc.ServiceRegistrar, srv MedTrackServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func unary[Req, Res any](name string, call func(MedTrackServer, context.Context, *Req) (*Res, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(MedTrackServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(MedTrackServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

func serverStream[Req, Res any](name string, call func(MedTrackServer, *Req, grpc.ServerStreamingServer[Res]) error) grpc.StreamDesc {
	return grpc.StreamDesc{
		StreamName:    name,
		ServerStreams: true,
		Handler: func(srv any, stream grpc.ServerStream) error {
			in := new(Req)
			if err := stream.RecvMsg(in); err != nil {
				return err
			}
			return call(srv.(MedTrackServer), in, &grpc.GenericServerStream[Req, Res]{ServerStream: stream})
		},
	}
}

// ServiceDesc is registered by RegisterMedTrackServer. The streams are
// referenced by index from the client, keep the order.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MedTrackServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodPing, MedTrackServer.Ping),
		unary(MethodRegister, MedTrackServer.Register),
		unary(MethodSignIn, MedTrackServer.SignIn),
		unary(MethodStartPhoneSignIn, MedTrackServer.StartPhoneSignIn),
		unary(MethodConfirmPhoneSignIn, MedTrackServer.ConfirmPhoneSignIn),
		unary(MethodStartFederatedSignIn, MedTrackServer.StartFederatedSignIn),
		unary(MethodGetRedirectResult, MedTrackServer.GetRedirectResult),
		unary(MethodRefreshToken, MedTrackServer.RefreshToken),
		unary(MethodSendPasswordReset, MedTrackServer.SendPasswordReset),
		unary(MethodSignOut, MedTrackServer.SignOut),
		unary(MethodGetCurrentUser, MedTrackServer.GetCurrentUser),
		unary(MethodSendVerificationEmail, MedTrackServer.SendVerificationEmail),
		unary(MethodChangePassword, MedTrackServer.ChangePassword),
		unary(MethodUpdateProfile, MedTrackServer.UpdateProfile),
		unary(MethodAddMedication, MedTrackServer.AddMedication),
		unary(MethodUpdateMedication, MedTrackServer.UpdateMedication),
		unary(MethodDeleteMedication, MedTrackServer.DeleteMedication),
		unary(MethodAddLog, MedTrackServer.AddLog),
		unary(MethodAddGuardian, MedTrackServer.AddGuardian),
		unary(MethodCreateUploadURL, MedTrackServer.CreateUploadURL),
		unary(MethodGetDownloadURL, MedTrackServer.GetDownloadURL),
		unary(MethodDeleteObject, MedTrackServer.DeleteObject),
		unary(MethodRequestInsights, MedTrackServer.RequestInsights),
	},
	Streams: []grpc.StreamDesc{
		serverStream(MethodWatchMedications, MedTrackServer.WatchMedications),
		serverStream(MethodWatchLogs, MedTrackServer.WatchLogs),
		serverStream(MethodWatchGuardians, MedTrackServer.WatchGuardians),
	},
}
