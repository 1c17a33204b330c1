package model

import (
	"errors"
	"testing"
	"time"
)

func TestDeletionReportFailed(t *testing.T) {
	r := &DeletionReport{ClassID: "c1"}
	r.Record("posts", nil)
	r.Record("submissions", errors.New("timeout"))
	r.Record("members", nil)

	failed := r.Failed()
	if len(failed) != 1 || failed[0] != "submissions" {
		t.Fatalf("expected only submissions to fail, got %v", failed)
	}
	if r.Steps[1].Error != "timeout" {
		t.Errorf("expected error text to be kept, got %q", r.Steps[1].Error)
	}
}

func TestValidMemberRole(t *testing.T) {
	for _, role := range []string{MemberRoleTeacher, MemberRoleTA, MemberRoleStudent} {
		if !ValidMemberRole(role) {
			t.Errorf("expected %q to be valid", role)
		}
	}
	if ValidMemberRole("owner") || ValidMemberRole("") {
		t.Error("expected unknown roles to be rejected")
	}
}

func TestAssignmentIsPastDue(t *testing.T) {
	now := time.Now()
	a := &Assignment{}
	if a.IsPastDue(now) {
		t.Error("assignment without due date is never late")
	}
	due := now.Add(-time.Hour)
	a.DueAt = &due
	if !a.IsPastDue(now) {
		t.Error("expected assignment to be past due")
	}
}
