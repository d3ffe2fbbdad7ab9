package api

import (
	"fmt"
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/azguard/role"
)

func (a *API) registerRoleRoutes(router forge.Router) error {
	g := router.Group("/v1", forge.WithGroupTags("roles"))

	if err := g.GET("/roles", a.allRoles,
		forge.WithSummary("List role names"),
		forge.WithDescription("Returns the names of the roles visible in the scope."),
		forge.WithOperationID("allRoles"),
		forge.WithRequestSchema(ScopeQuery{}),
		forge.WithResponseSchema(http.StatusOK, "Role names", NamesResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/roles", a.createRole,
		forge.WithSummary("Create role"),
		forge.WithDescription("Creates a role together with its role-definition task."),
		forge.WithOperationID("createRole"),
		forge.WithRequestSchema(CreateRoleRequest{}),
		forge.WithCreatedResponse(&role.Role{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/roles/:role", a.roleExists,
		forge.WithSummary("Role exists"),
		forge.WithDescription("Reports whether the role is visible in the scope."),
		forge.WithOperationID("roleExists"),
		forge.WithRequestSchema(RoleRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Existence", AllowedResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/roles/:role", a.deleteRole,
		forge.WithSummary("Delete role"),
		forge.WithDescription("Deletes a role, its memberships and its role-definition task."),
		forge.WithOperationID("deleteRole"),
		forge.WithRequestSchema(DeleteRoleRequest{}),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/roles/:role/members", a.usersInRole,
		forge.WithSummary("List role members"),
		forge.WithDescription("Returns the member names of a role."),
		forge.WithOperationID("usersInRole"),
		forge.WithRequestSchema(RoleRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Member names", NamesResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/roles/:role/members/:user", a.isUserInRole,
		forge.WithSummary("Is user in role"),
		forge.WithDescription("Reports whether the user holds the role."),
		forge.WithOperationID("isUserInRole"),
		forge.WithRequestSchema(RoleMemberRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Membership", AllowedResponse{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/roles/:role/grants", a.grantToRole,
		forge.WithSummary("Grant to role"),
		forge.WithDescription("Adds tasks and operations to what a role grants."),
		forge.WithOperationID("grantToRole"),
		forge.WithRequestSchema(GrantRequest{}),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/roles/:role/revocations", a.revokeFromRole,
		forge.WithSummary("Revoke from role"),
		forge.WithDescription("Removes tasks and operations from what a role grants."),
		forge.WithOperationID("revokeFromRole"),
		forge.WithRequestSchema(GrantRequest{}),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.POST("/memberships", a.addUsersToRoles,
		forge.WithSummary("Add users to roles"),
		forge.WithDescription("Adds every user to every role. Existing memberships are kept."),
		forge.WithOperationID("addUsersToRoles"),
		forge.WithRequestSchema(MembershipRequest{}),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.POST("/memberships/remove", a.removeUsersFromRoles,
		forge.WithSummary("Remove users from roles"),
		forge.WithDescription("Removes every user from every role where a membership exists."),
		forge.WithOperationID("removeUsersFromRoles"),
		forge.WithRequestSchema(MembershipRequest{}),
		forge.WithNoContentResponse(),
		forge.WithErrorResponses(),
	)
}

func (a *API) allRoles(ctx forge.Context, req *ScopeQuery) (*NamesResponse, error) {
	c := checkContext(ctx.Context(), optionalScope(req.Scope), ClientParams{})
	names, err := a.eng.AllRoles(c)
	if err != nil {
		return nil, mapError(err)
	}
	resp := &NamesResponse{Names: nonNil(names)}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) createRole(ctx forge.Context, req *CreateRoleRequest) (*role.Role, error) {
	if req.Name == "" {
		return nil, forge.BadRequest("name is required")
	}
	c := checkContext(ctx.Context(), optionalScope(req.Scope), ClientParams{})
	r, err := a.eng.CreateRole(c, req.Name)
	if err != nil {
		return nil, mapError(err)
	}
	return r, ctx.JSON(http.StatusCreated, r)
}

func (a *API) roleExists(ctx forge.Context, req *RoleRequest) (*AllowedResponse, error) {
	c := checkContext(ctx.Context(), optionalScope(req.Scope), ClientParams{})
	ok, err := a.eng.RoleExists(c, ctx.Param("role"))
	if err != nil {
		return nil, mapError(err)
	}
	resp := &AllowedResponse{Allowed: ok}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) deleteRole(ctx forge.Context, req *DeleteRoleRequest) (*struct{}, error) {
	name := ctx.Param("role")
	c := checkContext(ctx.Context(), optionalScope(req.Scope), ClientParams{})
	deleted, err := a.eng.DeleteRole(c, name, req.ThrowOnPopulated)
	if err != nil {
		return nil, mapError(err)
	}
	if !deleted {
		return nil, forge.NotFound(fmt.Sprintf("role %q does not exist", name))
	}
	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) usersInRole(ctx forge.Context, req *RoleRequest) (*NamesResponse, error) {
	c := checkContext(ctx.Context(), optionalScope(req.Scope), ClientParams{})
	users, err := a.eng.UsersInRole(c, ctx.Param("role"))
	if err != nil {
		return nil, mapError(err)
	}
	resp := &NamesResponse{Names: nonNil(users)}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) isUserInRole(ctx forge.Context, req *RoleMemberRequest) (*AllowedResponse, error) {
	c := checkContext(ctx.Context(), optionalScope(req.Scope), ClientParams{})
	ok, err := a.eng.IsUserInRole(c, ctx.Param("user"), ctx.Param("role"))
	if err != nil {
		return nil, mapError(err)
	}
	resp := &AllowedResponse{Allowed: ok}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func (a *API) grantToRole(ctx forge.Context, req *GrantRequest) (*struct{}, error) {
	c := checkContext(ctx.Context(), optionalScope(req.Scope), ClientParams{})
	if err := a.eng.GrantToRole(c, ctx.Param("role"), req.Tasks, req.Operations); err != nil {
		return nil, mapError(err)
	}
	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) revokeFromRole(ctx forge.Context, req *GrantRequest) (*struct{}, error) {
	c := checkContext(ctx.Context(), optionalScope(req.Scope), ClientParams{})
	if err := a.eng.RevokeFromRole(c, ctx.Param("role"), req.Tasks, req.Operations); err != nil {
		return nil, mapError(err)
	}
	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) addUsersToRoles(ctx forge.Context, req *MembershipRequest) (*struct{}, error) {
	c := checkContext(ctx.Context(), optionalScope(req.Scope), ClientParams{})
	if err := a.eng.AddUsersToRoles(c, req.Users, req.Roles); err != nil {
		return nil, mapError(err)
	}
	return nil, ctx.NoContent(http.StatusNoContent)
}

func (a *API) removeUsersFromRoles(ctx forge.Context, req *MembershipRequest) (*struct{}, error) {
	c := checkContext(ctx.Context(), optionalScope(req.Scope), ClientParams{})
	if err := a.eng.RemoveUsersFromRoles(c, req.Users, req.Roles); err != nil {
		return nil, mapError(err)
	}
	return nil, ctx.NoContent(http.StatusNoContent)
}
