package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("AppError", func() {
	ginkgo.It("matches its sentinel after Wrap", func() {
		sentinel := NewConflictError("slot taken", ErrCodeSlotConflict)
		wrapped := fmt.Errorf("repo: %w", sentinel.Wrap(errors.New("duplicate key")))

		gomega.Expect(errors.Is(wrapped, sentinel)).To(gomega.BeTrue())
		gomega.Expect(sentinel.Cause).To(gomega.BeNil())
		appErr, ok := IsAppError(wrapped)
		gomega.Expect(ok).To(gomega.BeTrue())
		gomega.Expect(appErr.StatusCode).To(gomega.Equal(http.StatusConflict))
	})

	ginkgo.It("does not match a different code", func() {
		gomega.Expect(errors.Is(ErrForbidden, ErrAdminRequired)).To(gomega.BeFalse())
	})

	ginkgo.It("tells field errors apart by field and field code", func() {
		tooLarge := NewValidationFieldError("file", "file exceeds the upload limit", ErrCodeFileTooLarge)
		required := NewValidationFieldError("file", "file is required", ErrCodeFileRequired)
		title := NewValidationFieldError("title", "title is required", ErrCodeValidationFailed)
		generic := NewValidationError("Validation failed", ErrCodeValidationFailed)

		gomega.Expect(errors.Is(required, tooLarge)).To(gomega.BeFalse())
		gomega.Expect(errors.Is(title, tooLarge)).To(gomega.BeFalse())
		gomega.Expect(errors.Is(fmt.Errorf("save: %w", tooLarge.Wrap(errors.New("limit"))), tooLarge)).To(gomega.BeTrue())
		gomega.Expect(errors.Is(title, generic)).To(gomega.BeTrue())
	})

	ginkgo.It("renders field details in the response", func() {
		err := NewValidationFieldError("startTime", "startTime must be a time in HH:MM format", ErrCodeInvalidTime)
		status, body := err.ToHTTPResponse()

		gomega.Expect(status).To(gomega.Equal(http.StatusBadRequest))
		gomega.Expect(body.Success).To(gomega.BeFalse())
		gomega.Expect(body.Code).To(gomega.Equal(ErrCodeValidationFailed))
		gomega.Expect(body.Error).To(gomega.Equal("startTime must be a time in HH:MM format"))
	})

	ginkgo.It("answers invalid tokens with 403", func() {
		gomega.Expect(ErrInvalidToken.StatusCode).To(gomega.Equal(http.StatusForbidden))
		gomega.Expect(ErrUnauthenticated.StatusCode).To(gomega.Equal(http.StatusUnauthorized))
	})
})

var _ = ginkgo.Describe("Identity", func() {
	admin := &Identity{UserID: "a", Role: RoleAdmin}
	resident := &Identity{UserID: "r", Role: RoleResident}
	doorman := &Identity{UserID: "d", Role: RoleDoorman}

	ginkgo.It("requires a role", func() {
		gomega.Expect(RequireRole(nil, RoleAdmin)).To(gomega.MatchError(ErrUnauthenticated))
		gomega.Expect(RequireRole(resident, RoleAdmin)).To(gomega.MatchError(ErrAdminRequired))
		gomega.Expect(RequireRole(resident, RoleAdmin, RoleDoorman)).To(gomega.MatchError(ErrForbidden))
		gomega.Expect(RequireRole(doorman, RoleAdmin, RoleDoorman)).To(gomega.Succeed())
	})

	ginkgo.It("lets owners and admins through", func() {
		gomega.Expect(RequireOwnerOrAdmin(resident, "r")).To(gomega.Succeed())
		gomega.Expect(RequireOwnerOrAdmin(admin, "r")).To(gomega.Succeed())
		gomega.Expect(RequireOwnerOrAdmin(doorman, "r")).To(gomega.MatchError(ErrForbidden))
		gomega.Expect(RequireOwnerOrAdmin(nil, "r")).To(gomega.MatchError(ErrUnauthenticated))
	})

	ginkgo.It("round-trips through the context", func() {
		ctx := ContextWithIdentity(context.Background(), resident)
		gomega.Expect(IdentityFromContext(ctx)).To(gomega.Equal(resident))
		gomega.Expect(IdentityFromContext(nil)).To(gomega.BeNil())
	})
})
