package services

import "github.com/dmitrijs2005/taskkeeper/internal/server/models"

// ReportPolicy decides who may read cross-user reports. An empty
// AllowedRoles admits every authenticated user.
type ReportPolicy struct {
	AllowedRoles []models.Role
}

func NewReportPolicy(roles []string) ReportPolicy {
	p := ReportPolicy{}
	for _, r := range roles {
		p.AllowedRoles = append(p.AllowedRoles, models.Role(r))
	}
	return p
}

func (p ReportPolicy) Allows(u *models.User) bool {
	if u == nil {
		return false
	}
	if len(p.AllowedRoles) == 0 {
		return true
	}
	for _, r := range p.AllowedRoles {
		if r == u.Role {
			return true
		}
	}
	return false
}
