package auth

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

// Mock UserDirectory for testing
type mockDirectory struct {
	records       map[string]*StoredUser
	returnError   bool
	errorToReturn error
}

func newMockDirectory() *mockDirectory {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.MinCost)

	return &mockDirectory{
		records: map[string]*StoredUser{
			"admin@discom.com": {
				User: User{
					ID:           "u-admin",
					Email:        "admin@discom.com",
					Name:         "Asha Verma",
					Role:         RoleAdmin,
					Organization: "Northern DISCOM",
				},
				PasswordHash: string(hashedPassword),
				IsActive:     true,
			},
			"viewer@discom.com": {
				User: User{
					ID:           "u-viewer",
					Email:        "viewer@discom.com",
					Role:         RoleViewer,
					Organization: "Northern DISCOM",
				},
				PasswordHash: string(hashedPassword),
				IsActive:     true,
			},
			"suspended@discom.com": {
				User: User{
					ID:    "u-suspended",
					Email: "suspended@discom.com",
					Role:  RoleOperator,
				},
				PasswordHash: string(hashedPassword),
				IsActive:     false,
			},
		},
	}
}

func (m *mockDirectory) FindByEmail(email string) (*StoredUser, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	if record, exists := m.records[email]; exists {
		return record, nil
	}
	return nil, errors.New("user not found")
}

const testSecret = "unit-test-secret-that-is-32-chars!!"

func newTestIssuer() *Issuer {
	return NewIssuer(testSecret, 12*time.Hour, 30*24*time.Hour, 365*24*time.Hour)
}

func newTestService(directory UserDirectory) *Service {
	return NewService(directory, newTestIssuer(), NewVerifier(testSecret), DefaultCatalog(), bcrypt.MinCost, discardLogger())
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		service *Service
		mockDir *mockDirectory
	)

	ginkgo.BeforeEach(func() {
		mockDir = newMockDirectory()
		service = newTestService(mockDir)
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.Context("when credentials are valid", func() {
			ginkgo.It("should return a signed session with the user identity", func() {
				session, err := service.Authenticate(LoginDTO{
					Email:    "admin@discom.com",
					Password: "correct_password",
				})

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(session.Token).ToNot(gomega.BeEmpty())
				gomega.Expect(session.ExpiresAt).To(gomega.BeTemporally("~", time.Now().Add(12*time.Hour), time.Minute))
				gomega.Expect(session.User.ID).To(gomega.Equal("u-admin"))
				gomega.Expect(session.User.Role).To(gomega.Equal(RoleAdmin))
				gomega.Expect(session.User.Organization).To(gomega.Equal("Northern DISCOM"))
			})

			ginkgo.It("should produce a token the verifier accepts as a session", func() {
				session, err := service.Authenticate(LoginDTO{
					Email:    "viewer@discom.com",
					Password: "correct_password",
				})
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				claims, err := service.VerifySession(session.Token)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(claims.Kind).To(gomega.Equal(KindSession))
				gomega.Expect(claims.Subject).To(gomega.Equal("u-viewer"))
				gomega.Expect(claims.Role).To(gomega.Equal(RoleViewer))
			})
		})

		ginkgo.Context("when credentials are wrong", func() {
			ginkgo.It("should return the same error for an unknown email and a wrong password", func() {
				_, unknownErr := service.Authenticate(LoginDTO{
					Email:    "missing@discom.com",
					Password: "correct_password",
				})
				_, wrongPassErr := service.Authenticate(LoginDTO{
					Email:    "admin@discom.com",
					Password: "wrong_password",
				})

				gomega.Expect(unknownErr).To(gomega.MatchError(ErrInvalidCredentials))
				gomega.Expect(wrongPassErr).To(gomega.MatchError(ErrInvalidCredentials))
			})

			ginkgo.It("should return ErrInvalidCredentials when the directory lookup fails", func() {
				mockDir.returnError = true
				mockDir.errorToReturn = errors.New("connection refused")

				_, err := service.Authenticate(LoginDTO{
					Email:    "admin@discom.com",
					Password: "correct_password",
				})
				gomega.Expect(err).To(gomega.MatchError(ErrInvalidCredentials))
			})
		})

		ginkgo.Context("when the account is inactive", func() {
			ginkgo.It("should reject with ErrUserInactive even with a correct password", func() {
				_, err := service.Authenticate(LoginDTO{
					Email:    "suspended@discom.com",
					Password: "correct_password",
				})
				gomega.Expect(err).To(gomega.MatchError(ErrUserInactive))
			})
		})

		ginkgo.Context("when the request is incomplete", func() {
			ginkgo.It("should reject a missing email", func() {
				_, err := service.Authenticate(LoginDTO{Password: "correct_password"})

				var verr ValidationError
				gomega.Expect(errors.As(err, &verr)).To(gomega.BeTrue())
			})

			ginkgo.It("should reject a missing password", func() {
				_, err := service.Authenticate(LoginDTO{Email: "admin@discom.com"})

				var verr ValidationError
				gomega.Expect(errors.As(err, &verr)).To(gomega.BeTrue())
			})
		})
	})

	ginkgo.Describe("IssueDeviceToken", func() {
		ginkgo.It("should round trip through device verification", func() {
			token, err := service.IssueDeviceToken(DeviceTokenDTO{DeviceID: "TRK-007"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			claims, err := service.VerifyDeviceToken(token)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.Kind).To(gomega.Equal(KindDevice))
			gomega.Expect(claims.Subject).To(gomega.Equal("TRK-007"))
		})

		ginkgo.It("should reject an empty device id", func() {
			_, err := service.IssueDeviceToken(DeviceTokenDTO{})

			var verr ValidationError
			gomega.Expect(errors.As(err, &verr)).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("IssueAPIKey", func() {
		ginkgo.It("should embed the requested permission snapshot", func() {
			key, err := service.IssueAPIKey(APIKeyDTO{
				UserID:      "u-admin",
				Permissions: []string{"view_dashboard", "view_analytics"},
			})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			claims, err := service.VerifyAPIKey(key)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.Kind).To(gomega.Equal(KindAPIKey))
			gomega.Expect(claims.Subject).To(gomega.Equal("u-admin"))
			gomega.Expect(claims.Permissions).To(gomega.ConsistOf(PermViewDashboard, PermViewAnalytics))
			gomega.Expect(claims.HasPermission(PermViewDashboard)).To(gomega.BeTrue())
			gomega.Expect(claims.HasPermission(PermDeleteTracker)).To(gomega.BeFalse())
		})

		ginkgo.It("should reject an empty permission list", func() {
			_, err := service.IssueAPIKey(APIKeyDTO{UserID: "u-admin"})

			var verr ValidationError
			gomega.Expect(errors.As(err, &verr)).To(gomega.BeTrue())
		})
	})
})

var _ = ginkgo.Describe("Issuer", func() {
	ginkgo.It("should refuse to issue a session without a user id", func() {
		_, _, err := newTestIssuer().IssueSession(&User{Role: RoleAdmin})

		var verr ValidationError
		gomega.Expect(errors.As(err, &verr)).To(gomega.BeTrue())
	})

	ginkgo.It("should refuse to issue a session for an unrecognized role", func() {
		_, _, err := newTestIssuer().IssueSession(&User{ID: "u-1", Role: Role("field_engineer")})

		var verr ValidationError
		gomega.Expect(errors.As(err, &verr)).To(gomega.BeTrue())
	})

	ginkgo.It("should not let mutations of the input slice alter an issued key", func() {
		perms := []Permission{PermViewDashboard}
		key, err := newTestIssuer().IssueAPIKey("u-1", perms)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		perms[0] = PermDeleteTracker

		claims, err := NewVerifier(testSecret).VerifyAPIKey(key)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(claims.Permissions).To(gomega.ConsistOf(PermViewDashboard))
	})
})

var _ = ginkgo.Describe("Verifier", func() {
	var (
		issuer   *Issuer
		verifier *Verifier
	)

	ginkgo.BeforeEach(func() {
		issuer = newTestIssuer()
		verifier = NewVerifier(testSecret)
	})

	ginkgo.Context("structural and signature failures", func() {
		ginkgo.It("should report garbage input as malformed", func() {
			_, err := verifier.VerifySession("not-a-jwt")
			gomega.Expect(err).To(gomega.MatchError(ErrMalformedCredential))
		})

		ginkgo.It("should reject a token signed with a different secret", func() {
			foreign := NewIssuer("some-other-secret-thats-32-chars!!!", time.Hour, time.Hour, time.Hour)
			token, err := foreign.IssueDeviceToken("TRK-001")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = verifier.VerifyDeviceToken(token)
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidSignature))
		})

		ginkgo.It("should report any payload tampering as an invalid signature", func() {
			token, err := issuer.IssueDeviceToken("TRK-001")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			parts := strings.Split(token, ".")
			gomega.Expect(parts).To(gomega.HaveLen(3))

			// Flip one bit in every payload byte. The signature is computed
			// over the raw segments, so each mutation must fail as a
			// signature mismatch even when it breaks the claims JSON.
			for i := 0; i < len(parts[1]); i++ {
				mutated := []byte(parts[1])
				mutated[i] ^= 0x01

				_, err := verifier.VerifyDeviceToken(parts[0] + "." + string(mutated) + "." + parts[2])
				gomega.Expect(err).To(gomega.MatchError(ErrInvalidSignature),
					"payload byte %d", i)
			}
		})

		ginkgo.It("should report signature tampering as an invalid signature", func() {
			token, err := issuer.IssueDeviceToken("TRK-001")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			parts := strings.Split(token, ".")
			mutated := []byte(parts[2])
			mutated[0] ^= 0x01

			_, err = verifier.VerifyDeviceToken(parts[0] + "." + parts[1] + "." + string(mutated))
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidSignature))
		})
	})

	ginkgo.Context("expiry", func() {
		ginkgo.It("should reject an expired device token", func() {
			expired := NewIssuer(testSecret, time.Hour, -time.Minute, time.Hour)
			token, err := expired.IssueDeviceToken("TRK-001")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = verifier.VerifyDeviceToken(token)
			gomega.Expect(err).To(gomega.MatchError(ErrCredentialExpired))
		})

		ginkgo.It("should reject an expired session", func() {
			expired := NewIssuer(testSecret, -time.Minute, time.Hour, time.Hour)
			token, _, err := expired.IssueSession(&User{ID: "u-1", Role: RoleViewer})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = verifier.VerifySession(token)
			gomega.Expect(err).To(gomega.MatchError(ErrCredentialExpired))
		})
	})

	ginkgo.Context("credential kind segregation", func() {
		ginkgo.It("should refuse a session token presented as a device token", func() {
			token, _, err := issuer.IssueSession(&User{ID: "u-1", Role: RoleAdmin})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = verifier.VerifyDeviceToken(token)
			gomega.Expect(err).To(gomega.MatchError(ErrWrongCredentialKind))
		})

		ginkgo.It("should refuse a device token presented as a session", func() {
			token, err := issuer.IssueDeviceToken("TRK-001")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = verifier.VerifySession(token)
			gomega.Expect(err).To(gomega.MatchError(ErrWrongCredentialKind))
		})

		ginkgo.It("should refuse an API key presented as a session", func() {
			key, err := issuer.IssueAPIKey("u-1", []Permission{PermViewDashboard})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = verifier.VerifySession(key)
			gomega.Expect(err).To(gomega.MatchError(ErrWrongCredentialKind))
		})
	})
})

var _ = ginkgo.Describe("Catalog", func() {
	catalog := DefaultCatalog()

	ginkgo.It("should grant admin every permission any other role has", func() {
		for _, role := range []Role{RoleManager, RoleOperator, RoleViewer} {
			for _, perm := range catalog.PermissionsFor(role) {
				gomega.Expect(catalog.Grants(RoleAdmin, perm)).To(gomega.BeTrue(),
					"admin should hold %s granted to %s", perm, role)
			}
		}
	})

	ginkgo.It("should fail closed for unknown roles", func() {
		gomega.Expect(catalog.PermissionsFor(Role("intern"))).To(gomega.BeEmpty())
		gomega.Expect(catalog.Grants(Role("intern"), PermViewDashboard)).To(gomega.BeFalse())
	})

	ginkgo.It("should keep viewer read-only", func() {
		gomega.Expect(catalog.Grants(RoleViewer, PermViewDashboard)).To(gomega.BeTrue())
		gomega.Expect(catalog.Grants(RoleViewer, PermAddTracker)).To(gomega.BeFalse())
		gomega.Expect(catalog.Grants(RoleViewer, PermDeleteTracker)).To(gomega.BeFalse())
		gomega.Expect(catalog.Grants(RoleViewer, PermManageUsers)).To(gomega.BeFalse())
	})

	ginkgo.It("should return copies that cannot mutate the catalog", func() {
		perms := catalog.PermissionsFor(RoleViewer)
		perms[0] = PermManageUsers

		gomega.Expect(catalog.Grants(RoleViewer, PermManageUsers)).To(gomega.BeFalse())
	})
})

var _ = ginkgo.Describe("Gate", func() {
	gate := NewGate(DefaultCatalog())

	ginkgo.It("should answer single permission checks", func() {
		gomega.Expect(gate.HasPermission(RoleOperator, PermAddTracker)).To(gomega.BeTrue())
		gomega.Expect(gate.HasPermission(RoleOperator, PermDeleteTracker)).To(gomega.BeFalse())
	})

	ginkgo.It("should satisfy any-of checks with one match", func() {
		gomega.Expect(gate.HasAnyPermission(RoleViewer, []Permission{PermManageUsers, PermViewDashboard})).To(gomega.BeTrue())
		gomega.Expect(gate.HasAnyPermission(RoleViewer, []Permission{PermManageUsers, PermSystemConfig})).To(gomega.BeFalse())
	})

	ginkgo.It("should require every permission for all-of checks", func() {
		gomega.Expect(gate.HasAllPermissions(RoleManager, []Permission{PermViewDashboard, PermViewAnalytics})).To(gomega.BeTrue())
		gomega.Expect(gate.HasAllPermissions(RoleManager, []Permission{PermViewDashboard, PermDeleteTracker})).To(gomega.BeFalse())
	})
})
