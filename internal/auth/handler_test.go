package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("AuthHandler", func() {
	var (
		handler *Handler
		service *Service
	)

	ginkgo.BeforeEach(func() {
		service = newTestService(newMockDirectory())
		handler = NewHandler(service)
	})

	ginkgo.Describe("Login", func() {
		ginkgo.It("should return a session for valid credentials", func() {
			body, _ := json.Marshal(LoginDTO{Email: "admin@discom.com", Password: "correct_password"})
			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))

			var session Session
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &session)).To(gomega.Succeed())
			gomega.Expect(session.Token).ToNot(gomega.BeEmpty())
			gomega.Expect(session.User.Email).To(gomega.Equal("admin@discom.com"))
		})

		ginkgo.It("should return 401 without distinguishing unknown email from wrong password", func() {
			for _, payload := range []LoginDTO{
				{Email: "missing@discom.com", Password: "correct_password"},
				{Email: "admin@discom.com", Password: "wrong_password"},
			} {
				body, _ := json.Marshal(payload)
				req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
				rec := httptest.NewRecorder()

				handler.Login(rec, req)

				gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
				gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("invalid credentials"))
			}
		})

		ginkgo.It("should return 400 for a malformed body", func() {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte("{not json")))
			rec := httptest.NewRecorder()

			handler.Login(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("AuthMiddleware", func() {
		var next http.Handler

		ginkgo.BeforeEach(func() {
			next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				user, ok := UserFromContext(r.Context())
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(user.Role).To(gomega.Equal(RoleAdmin))
				w.WriteHeader(http.StatusOK)
			})
		})

		ginkgo.It("should admit a valid session and place the caller in context", func() {
			session, err := service.Authenticate(LoginDTO{Email: "admin@discom.com", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			req := httptest.NewRequest(http.MethodGet, "/trackers", nil)
			req.Header.Set("Authorization", "Bearer "+session.Token)
			rec := httptest.NewRecorder()

			handler.AuthMiddleware(next).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("should reject a missing token with 401", func() {
			req := httptest.NewRequest(http.MethodGet, "/trackers", nil)
			rec := httptest.NewRecorder()

			handler.AuthMiddleware(next).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})

		ginkgo.It("should reject a device token presented as a session with 401", func() {
			token, err := service.IssueDeviceToken(DeviceTokenDTO{DeviceID: "TRK-001"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			req := httptest.NewRequest(http.MethodGet, "/trackers", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()

			handler.AuthMiddleware(next).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})

	ginkgo.Describe("DeviceAuthMiddleware", func() {
		var next http.Handler

		ginkgo.BeforeEach(func() {
			next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				deviceID, ok := DeviceFromContext(r.Context())
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(deviceID).To(gomega.Equal("TRK-007"))
				w.WriteHeader(http.StatusOK)
			})
		})

		ginkgo.It("should admit a valid device token", func() {
			token, err := service.IssueDeviceToken(DeviceTokenDTO{DeviceID: "TRK-007"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			req := httptest.NewRequest(http.MethodPost, "/trackers/update", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()

			handler.DeviceAuthMiddleware(next).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("should reject a session token with 403, never partial claims", func() {
			session, err := service.Authenticate(LoginDTO{Email: "admin@discom.com", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			req := httptest.NewRequest(http.MethodPost, "/trackers/update", nil)
			req.Header.Set("Authorization", "Bearer "+session.Token)
			rec := httptest.NewRecorder()

			handler.DeviceAuthMiddleware(next).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
		})

		ginkgo.It("should reject garbage with 401", func() {
			req := httptest.NewRequest(http.MethodPost, "/trackers/update", nil)
			req.Header.Set("Authorization", "Bearer not-a-jwt")
			rec := httptest.NewRecorder()

			handler.DeviceAuthMiddleware(next).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})

	ginkgo.Describe("APIKeyMiddleware", func() {
		ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		ginkgo.It("should admit a key whose snapshot holds the permission", func() {
			key, err := service.IssueAPIKey(APIKeyDTO{UserID: "u-1", Permissions: []string{"view_dashboard"}})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			req := httptest.NewRequest(http.MethodGet, "/integrations/trackers", nil)
			req.Header.Set("X-API-Key", key)
			rec := httptest.NewRecorder()

			handler.APIKeyMiddleware(PermViewDashboard)(ok).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("should reject a key whose snapshot lacks the permission with 403", func() {
			key, err := service.IssueAPIKey(APIKeyDTO{UserID: "u-1", Permissions: []string{"view_logs"}})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			req := httptest.NewRequest(http.MethodGet, "/integrations/trackers", nil)
			req.Header.Set("X-API-Key", key)
			rec := httptest.NewRecorder()

			handler.APIKeyMiddleware(PermViewDashboard)(ok).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
		})

		ginkgo.It("should reject a missing key with 401", func() {
			req := httptest.NewRequest(http.MethodGet, "/integrations/trackers", nil)
			rec := httptest.NewRecorder()

			handler.APIKeyMiddleware(PermViewDashboard)(ok).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})

	ginkgo.Describe("RBACAuthorization", func() {
		ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		requestAs := func(role Role) *http.Request {
			req := httptest.NewRequest(http.MethodGet, "/trackers", nil)
			return req.WithContext(ContextWithUser(req.Context(), &User{ID: "u-test", Role: role}))
		}

		ginkgo.It("should admit a role holding the permission", func() {
			rbac := NewRBACAuthorization(service.Gate(), discardLogger())
			rec := httptest.NewRecorder()

			rbac.Require(PermAddTracker)(ok).ServeHTTP(rec, requestAs(RoleOperator))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		})

		ginkgo.It("should deny a role lacking the permission with 403", func() {
			rbac := NewRBACAuthorization(service.Gate(), discardLogger())
			rec := httptest.NewRecorder()

			rbac.Require(PermDeleteTracker)(ok).ServeHTTP(rec, requestAs(RoleOperator))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusForbidden))
		})

		ginkgo.It("should deny an unauthenticated request with 401", func() {
			rbac := NewRBACAuthorization(service.Gate(), discardLogger())
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/trackers", nil)

			rbac.Require(PermViewDashboard)(ok).ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
		})
	})
})
