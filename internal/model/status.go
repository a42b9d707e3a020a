// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"strings"
)

// ClaimStatus is a stage in the claim lifecycle.
type ClaimStatus string

// Claim status constants, in lifecycle order.
const (
	StatusSubmitted     ClaimStatus = "Submitted"
	StatusAIReview      ClaimStatus = "AIReview"
	StatusEstimated     ClaimStatus = "Estimated"
	StatusApproved      ClaimStatus = "Approved"
	StatusInRepair      ClaimStatus = "InRepair"
	StatusPickUpPending ClaimStatus = "PickUpPending"
	StatusClosed        ClaimStatus = "Closed"
	StatusRejected      ClaimStatus = "Rejected"
)

// AllStatuses lists every status in lifecycle order, side terminal last.
func AllStatuses() []ClaimStatus {
	return []ClaimStatus{
		StatusSubmitted,
		StatusAIReview,
		StatusEstimated,
		StatusApproved,
		StatusInRepair,
		StatusPickUpPending,
		StatusClosed,
		StatusRejected,
	}
}

// IsTerminal returns true if no further transition or negotiation is permitted.
func (s ClaimStatus) IsTerminal() bool {
	return s == StatusClosed || s == StatusRejected
}

// Valid reports whether s is one of the known statuses.
func (s ClaimStatus) Valid() bool {
	for _, known := range AllStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

// ParseStatus resolves a status name case-insensitively.
func ParseStatus(s string) (ClaimStatus, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, known := range AllStatuses() {
		if strings.ToLower(string(known)) == needle {
			return known, nil
		}
	}
	return "", fmt.Errorf("unknown claim status: %q", s)
}

// Role identifies the kind of actor performing an action.
type Role string

// Actor roles.
const (
	RolePolicyholder   Role = "Policyholder"
	RoleRepairShop     Role = "Repair Shop"
	RoleInsuranceAgent Role = "Insurance Agent"
	RoleSystem         Role = "System"
)

var roleAliases = map[string]Role{
	"policyholder":    RolePolicyholder,
	"holder":          RolePolicyholder,
	"repair shop":     RoleRepairShop,
	"repair-shop":     RoleRepairShop,
	"shop":            RoleRepairShop,
	"insurance agent": RoleInsuranceAgent,
	"insurance-agent": RoleInsuranceAgent,
	"agent":           RoleInsuranceAgent,
	"system":          RoleSystem,
}

// ParseRole resolves a role from its display name or a short alias.
func ParseRole(s string) (Role, error) {
	if r, ok := roleAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return r, nil
	}
	return "", fmt.Errorf("unknown role: %q", s)
}

// Actor is the identity an operation is performed as.
type Actor struct {
	Role Role
	Name string
}

// SystemActor is the actor used for intake and gateway-driven transitions.
var SystemActor = Actor{Role: RoleSystem, Name: "System"}
