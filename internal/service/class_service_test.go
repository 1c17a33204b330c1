package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"classroom/internal/model"
	"classroom/internal/pubsub"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateClassEnrollsOwnerAsTeacher(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.db.addProfile("owner", model.ProfileRoleTeacher)

	class, err := f.classes.CreateClass(ctx, "owner", "  Algebra I ", "", "A")
	require.NoError(t, err)
	assert.Equal(t, "Algebra I", class.Name)
	assert.Len(t, class.JoinCode, 6)

	m, err := f.db.GetMember(ctx, class.ID, "owner")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, model.MemberRoleTeacher, m.Role)
}

func TestCreateClassValidation(t *testing.T) {
	f := newFixture()
	_, err := f.classes.CreateClass(context.Background(), "owner", "   ", "", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateClassRetriesJoinCodeCollisions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.db.addProfile("owner", model.ProfileRoleTeacher)
	svc := f.classes.(*classService)

	codes := []string{"AAAAAA", "AAAAAA", "AAAAAA", "BBBBBB"}
	svc.newJoinCode = func() (string, error) {
		c := codes[0]
		codes = codes[1:]
		return c, nil
	}

	first, err := svc.CreateClass(ctx, "owner", "First", "", "")
	require.NoError(t, err)
	assert.Equal(t, "AAAAAA", first.JoinCode)

	second, err := svc.CreateClass(ctx, "owner", "Second", "", "")
	require.NoError(t, err)
	assert.Equal(t, "BBBBBB", second.JoinCode)
}

func TestCreateClassGivesUpAfterFiveCollisions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	svc := f.classes.(*classService)
	calls := 0
	svc.newJoinCode = func() (string, error) {
		calls++
		return "SAME22", nil
	}

	_, err := svc.CreateClass(ctx, "owner", "First", "", "")
	require.NoError(t, err)
	calls = 0
	_, err = svc.CreateClass(ctx, "owner", "Second", "", "")
	require.Error(t, err)
	assert.Equal(t, joinCodeAttempts, calls)
}

func TestCreateClassRemovesClassWhenOwnerEnrollmentFails(t *testing.T) {
	f := newFixture()
	f.db.failOn("AddMember", errors.New("boom"))

	_, err := f.classes.CreateClass(context.Background(), "owner", "Orphan", "", "")
	require.Error(t, err)
	assert.Empty(t, f.db.classes)
}

func TestJoinClass(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	class, err := f.classes.CreateClass(ctx, "owner", "Biology", "", "")
	require.NoError(t, err)

	joined, err := f.classes.JoinClass(ctx, "student", "  "+strings.ToLower(class.JoinCode)+" ")
	require.NoError(t, err)
	assert.Equal(t, class.ID, joined.ID)

	m, _ := f.db.GetMember(ctx, class.ID, "student")
	require.NotNil(t, m)
	assert.Equal(t, model.MemberRoleStudent, m.Role)
	assert.Contains(t, f.events.types(), pubsub.EventMemberJoined)

	_, err = f.classes.JoinClass(ctx, "student", class.JoinCode)
	assert.ErrorIs(t, err, ErrAlreadyMember)

	_, err = f.classes.JoinClass(ctx, "student", "ZZZZZZ")
	assert.ErrorIs(t, err, ErrInvalidJoinCode)

	_, err = f.classes.JoinClass(ctx, "student", "abc")
	assert.ErrorIs(t, err, ErrInvalidJoinCode)
}

func TestLeaveClass(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	class, err := f.classes.CreateClass(ctx, "owner", "Biology", "", "")
	require.NoError(t, err)
	_, err = f.classes.JoinClass(ctx, "student", class.JoinCode)
	require.NoError(t, err)

	assert.ErrorIs(t, f.classes.LeaveClass(ctx, "owner", class.ID), ErrOwnerProtected)
	require.NoError(t, f.classes.LeaveClass(ctx, "student", class.ID))
	assert.ErrorIs(t, f.classes.LeaveClass(ctx, "student", class.ID), ErrNotMember)
}

func TestUpdateClassPermissions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.db.addProfile("admin", model.ProfileRoleAdmin)
	f.db.addProfile("student", model.ProfileRoleStudent)
	class, err := f.classes.CreateClass(ctx, "owner", "Biology", "", "")
	require.NoError(t, err)
	_, err = f.classes.JoinClass(ctx, "student", class.JoinCode)
	require.NoError(t, err)

	_, err = f.classes.UpdateClass(ctx, "student", class.ID, "Hacked", "", "")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.classes.UpdateClass(ctx, "stranger", class.ID, "Hacked", "", "")
	assert.ErrorIs(t, err, ErrNotMember)

	updated, err := f.classes.UpdateClass(ctx, "admin", class.ID, "Biology II", "cells", "B")
	require.NoError(t, err)
	assert.Equal(t, "Biology II", updated.Name)
}

func TestGetClassHidesJoinCodeFromStudents(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	class, err := f.classes.CreateClass(ctx, "owner", "Biology", "", "")
	require.NoError(t, err)
	_, err = f.classes.JoinClass(ctx, "student", class.JoinCode)
	require.NoError(t, err)

	seen, err := f.classes.GetClass(ctx, "student", class.ID)
	require.NoError(t, err)
	assert.Empty(t, seen.JoinCode)

	seen, err = f.classes.GetClass(ctx, "owner", class.ID)
	require.NoError(t, err)
	assert.Equal(t, class.JoinCode, seen.JoinCode)
}

func TestRegenerateJoinCode(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	class, err := f.classes.CreateClass(ctx, "owner", "Biology", "", "")
	require.NoError(t, err)

	code, err := f.classes.RegenerateJoinCode(ctx, "owner", class.ID)
	require.NoError(t, err)
	stored, _ := f.db.GetClassByID(ctx, class.ID)
	assert.Equal(t, code, stored.JoinCode)

	_, err = f.classes.JoinClass(ctx, "student", code)
	require.NoError(t, err)
	_, err = f.classes.RegenerateJoinCode(ctx, "student", class.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

// populate fills a class with one row of every kind.
func populate(t *testing.T, f *fixture) *model.Class {
	t.Helper()
	ctx := context.Background()
	class, err := f.classes.CreateClass(ctx, "owner", "Chemistry", "", "")
	require.NoError(t, err)
	_, err = f.classes.JoinClass(ctx, "student", class.JoinCode)
	require.NoError(t, err)

	post, err := f.posts.CreatePost(ctx, "owner", class.ID, "Welcome", "hi", []Upload{textUpload("syllabus.txt", "week 1")})
	require.NoError(t, err)
	a, err := f.assignments.CreateAssignment(ctx, "owner", class.ID, AssignmentInput{Title: "Lab 1"}, []Upload{textUpload("lab.txt", "do it")})
	require.NoError(t, err)
	_, err = f.submissions.Submit(ctx, "student", a.ID, "done", []Upload{textUpload("report.txt", "results")})
	require.NoError(t, err)
	q, err := f.questions.AskQuestion(ctx, "student", class.ID, "When is the exam?", "")
	require.NoError(t, err)
	_, err = f.questions.Answer(ctx, "owner", q.ID, "Friday")
	require.NoError(t, err)
	pl, err := f.playlists.CreatePlaylist(ctx, "owner", class.ID, "Reading", "")
	require.NoError(t, err)
	_, err = f.playlists.AddFile(ctx, "owner", pl.ID, post.Files[0].ID)
	require.NoError(t, err)
	return class
}

func TestDeleteClassCascades(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	class := populate(t, f)
	require.Equal(t, 3, f.storage.count())

	report, err := f.classes.DeleteClass(ctx, "owner", class.ID)
	require.NoError(t, err)
	assert.True(t, report.Deleted)
	assert.Empty(t, report.Failed())

	var names []string
	for _, s := range report.Steps {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		StepPostFiles, StepPosts, StepAssignmentFiles, StepSubmissions, StepAssignments,
		StepAnswers, StepQuestions, StepPlaylistFiles, StepPlaylists, StepMembers, StepClass,
	}, names)

	assert.Zero(t, f.storage.count())
	assert.Empty(t, f.db.files)
	assert.Empty(t, f.db.submissions)
	assert.Empty(t, f.db.answers)
	assert.Empty(t, f.db.entries)
	assert.Empty(t, f.db.classes)
	assert.Contains(t, f.events.types(), pubsub.EventClassDeleted)
}

func TestDeleteClassContinuesPastFailedSteps(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	class := populate(t, f)
	f.db.failOn("DeleteMembersByClassID", errors.New("network down"))

	report, err := f.classes.DeleteClass(ctx, "owner", class.ID)
	require.Error(t, err)
	require.NotNil(t, report)
	assert.False(t, report.Deleted)
	assert.Equal(t, []string{StepMembers, StepClass}, report.Failed())
	// Later steps still ran.
	assert.Empty(t, f.db.playlists)
	assert.NotContains(t, f.events.types(), pubsub.EventClassDeleted)
}

func TestDeleteClassSurvivesStorageOutage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	class := populate(t, f)
	f.storage.removeErr = errors.New("bucket unavailable")

	report, err := f.classes.DeleteClass(ctx, "owner", class.ID)
	require.NoError(t, err)
	assert.True(t, report.Deleted)
	assert.Empty(t, f.db.files)
}

func TestDeleteClassRequiresManager(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	class := populate(t, f)

	_, err := f.classes.DeleteClass(ctx, "student", class.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.classes.DeleteClass(ctx, "owner", "missing")
	assert.ErrorIs(t, err, ErrClassNotFound)
}
