// internal/adapters/in/http/middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"

	repdom "leadportal/internal/domain/rep"
)

// FirebaseAuthClient は firebase auth クライアントのエイリアス。
// RouterDeps などからは *middleware.FirebaseAuthClient 型で受けられます。
type FirebaseAuthClient = fbauth.Client

// context key は string を使わず、衝突回避のため独自型を使用（SA1029 対策）
type ctxKey struct{ name string }

var (
	ctxKeyRep = ctxKey{name: "currentRep"}
	ctxKeyUID = ctxKey{name: "uid"}
)

// RepAuthMiddleware は
//
//   - Authorization: Bearer <ID_TOKEN>
//
// を検証し、営業担当者と uid を context に詰めて次のハンドラへ渡します。
// 管理画面（deals / scorecard / notifications）用で、クライアントポータル
// 側の経路には付けません。
type RepAuthMiddleware struct {
	FirebaseAuth *FirebaseAuthClient
	RepRepo      repdom.Repository
}

func (m *RepAuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.FirebaseAuth == nil || m.RepRepo == nil {
			http.Error(w, "auth middleware not initialized", http.StatusServiceUnavailable)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			http.Error(w, "unauthorized: missing bearer token", http.StatusUnauthorized)
			return
		}

		idToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if idToken == "" {
			http.Error(w, "unauthorized: empty bearer token", http.StatusUnauthorized)
			return
		}

		token, err := m.FirebaseAuth.VerifyIDToken(r.Context(), idToken)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		uid := strings.TrimSpace(token.UID)
		if uid == "" {
			http.Error(w, "invalid uid in token", http.StatusUnauthorized)
			return
		}

		rep, err := m.RepRepo.GetByFirebaseUID(r.Context(), uid)
		if err != nil {
			http.Error(w, "rep not found", http.StatusForbidden)
			return
		}
		if !rep.Active {
			http.Error(w, "rep deactivated", http.StatusForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyRep, rep)
		ctx = context.WithValue(ctx, ctxKeyUID, uid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RepFromContext returns the authenticated rep, if any.
func RepFromContext(ctx context.Context) (repdom.SalesRep, bool) {
	rep, ok := ctx.Value(ctxKeyRep).(repdom.SalesRep)
	return rep, ok
}

// UIDFromContext returns the verified Firebase UID, if any.
func UIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(ctxKeyUID).(string)
	return uid, ok
}
