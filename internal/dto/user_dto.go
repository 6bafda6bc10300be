package dto

type UpdateRoleRequest struct {
	Role string `json:"role"`
}
