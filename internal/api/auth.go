package api

import (
	"context"
	"errors"
	"strings"
	"time"

	"roomstay/internal/config"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

// AuthInterceptor applies the HTTP API key rules to gRPC calls, reading the
// key pair from metadata.
type AuthInterceptor struct {
	keys    *keyring
	limiter *clientLimiter
}

func NewAuthInterceptor(cfg *config.APIConfig) *AuthInterceptor {
	return &AuthInterceptor{keys: newKeyring(cfg.Auth), limiter: newClientLimiter(cfg.RateLimit)}
}

func (a *AuthInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		md, _ := metadata.FromIncomingContext(ctx)

		if a.keys.enabled {
			if md == nil {
				return nil, status.Error(codes.Unauthenticated, "missing metadata")
			}
			_, err := a.keys.authorize(
				firstValue(md, a.keys.keyHeader),
				firstValue(md, a.keys.extraHeader),
				requiredPermission(info.FullMethod),
			)
			if errors.Is(err, errPermissionDenied) {
				return nil, status.Error(codes.PermissionDenied, err.Error())
			}
			if err != nil {
				return nil, status.Error(codes.Unauthenticated, err.Error())
			}
		}

		if !a.limiter.allow(grpcClientKey(ctx, firstValue(md, a.keys.keyHeader))) {
			return nil, status.Error(codes.ResourceExhausted, "rate limit exceeded")
		}
		return handler(ctx, req)
	}
}

// requiredPermission maps a full gRPC method name to a permission. The
// health service is a read.
func requiredPermission(fullMethod string) string {
	if strings.HasPrefix(fullMethod, "/"+grpc_health_v1.Health_ServiceDesc.ServiceName+"/") {
		return permRead
	}
	return ""
}

func grpcClientKey(ctx context.Context, apiKey string) string {
	if apiKey != "" {
		return apiKey
	}
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		return p.Addr.String()
	}
	return clientKeyUnknown
}

func firstValue(md metadata.MD, key string) string {
	if vals := md.Get(key); len(vals) > 0 {
		return strings.TrimSpace(vals[0])
	}
	return ""
}

const requestIDMetadataKey = "x-request-id"

// LoggingUnaryInterceptor logs every call with its request id, echoing the id
// back in the response header. Failed calls are logged at warn level.
func LoggingUnaryInterceptor(logger *zerolog.Logger) grpc.UnaryServerInterceptor {
	base := zerolog.Nop()
	if logger != nil {
		base = logger.With().Str("component", "grpc").Logger()
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		md, _ := metadata.FromIncomingContext(ctx)
		reqID := firstValue(md, requestIDMetadataKey)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDMetadataKey, reqID))

		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		event := base.Info()
		if code != codes.OK {
			event = base.Warn().Err(err)
		}
		event.
			Str("request_id", reqID).
			Str("method", info.FullMethod).
			Str("remote", grpcClientKey(ctx, "")).
			Str("code", code.String()).
			Dur("duration", time.Since(start)).
			Msg("grpc request")

		return resp, err
	}
}
