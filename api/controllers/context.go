package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/tillpoint/api/middleware"
	"github.com/angelmondragon/tillpoint/pkg/enums"
	pkgerrors "github.com/angelmondragon/tillpoint/pkg/errors"
)

func tenantIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.TenantIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "tenant context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tenant id")
	}
	return id, nil
}

func roleFromRequest(r *http.Request) enums.MemberRole {
	role, err := enums.ParseMemberRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return ""
	}
	return role
}
