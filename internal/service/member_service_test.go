package service

import (
	"context"
	"testing"

	"classroom/internal/model"
	"classroom/internal/pubsub"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classWithStudent(t *testing.T, f *fixture) *model.Class {
	t.Helper()
	ctx := context.Background()
	class, err := f.classes.CreateClass(ctx, "owner", "History", "", "")
	require.NoError(t, err)
	_, err = f.classes.JoinClass(ctx, "student", class.JoinCode)
	require.NoError(t, err)
	return class
}

func TestChangeRole(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	class := classWithStudent(t, f)

	m, err := f.members.ChangeRole(ctx, "owner", class.ID, "student", model.MemberRoleTA)
	require.NoError(t, err)
	assert.Equal(t, model.MemberRoleTA, m.Role)
	assert.Contains(t, f.events.types(), pubsub.EventMemberRoleChange)

	// A TA is staff but cannot manage membership.
	_, err = f.classes.JoinClass(ctx, "other", class.JoinCode)
	require.NoError(t, err)
	_, err = f.members.ChangeRole(ctx, "student", class.ID, "other", model.MemberRoleTeacher)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestChangeRoleRules(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	class := classWithStudent(t, f)

	_, err := f.members.ChangeRole(ctx, "owner", class.ID, "student", "principal")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.members.ChangeRole(ctx, "owner", class.ID, "owner", model.MemberRoleStudent)
	assert.ErrorIs(t, err, ErrOwnerProtected)

	_, err = f.members.ChangeRole(ctx, "owner", class.ID, "nobody", model.MemberRoleTA)
	assert.ErrorIs(t, err, ErrMemberNotFound)
}

func TestChangeRoleByAdmin(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	class := classWithStudent(t, f)
	f.db.addProfile("admin", model.ProfileRoleAdmin)

	m, err := f.members.ChangeRole(ctx, "admin", class.ID, "student", model.MemberRoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, model.MemberRoleTeacher, m.Role)
}

func TestRemoveMember(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	class := classWithStudent(t, f)

	assert.ErrorIs(t, f.members.RemoveMember(ctx, "student", class.ID, "owner"), ErrForbidden)
	assert.ErrorIs(t, f.members.RemoveMember(ctx, "owner", class.ID, "owner"), ErrOwnerProtected)
	require.NoError(t, f.members.RemoveMember(ctx, "owner", class.ID, "student"))
	assert.ErrorIs(t, f.members.RemoveMember(ctx, "owner", class.ID, "student"), ErrMemberNotFound)

	members, err := f.members.ListMembers(ctx, "owner", class.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}
