package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"classroom/internal/model"
	"classroom/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// memDB implements every repository interface over in-memory slices.
type memDB struct {
	mu          sync.Mutex
	profiles    []model.Profile
	classes     []model.Class
	members     []model.ClassMember
	posts       []model.Post
	assignments []model.Assignment
	submissions []model.Submission
	files       []model.File
	questions   []model.Question
	answers     []model.Answer
	playlists   []model.Playlist
	entries     []model.PlaylistFile
	failures    map[string]error
}

func newMemDB() *memDB {
	return &memDB{failures: map[string]error{}}
}

func (m *memDB) repos() Repositories {
	return Repositories{
		Profiles: m, Classes: m, Members: m, Posts: m, Assignments: m,
		Submissions: m, Files: m, Questions: m, Playlists: m,
	}
}

func (m *memDB) failOn(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[method] = err
}

// fail must be called with the lock held.
func (m *memDB) fail(method string) error {
	return m.failures[method]
}

func uniqueErr(constraint string) error {
	return errors.Join(repository.ErrDuplicate, &pgconn.PgError{Code: "23505", ConstraintName: constraint})
}

func (m *memDB) addProfile(id, role string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles = append(m.profiles, model.Profile{ID: id, Role: role, FullName: "User " + id, CreatedAt: time.Now()})
}

// profiles

func (m *memDB) GetProfileByID(ctx context.Context, id string) (*model.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memDB) UpsertProfile(ctx context.Context, p *model.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.profiles {
		if m.profiles[i].ID == p.ID {
			cur := &m.profiles[i]
			cur.Email = p.Email
			if p.FullName != "" {
				cur.FullName = p.FullName
			}
			if p.AvatarURL != "" {
				cur.AvatarURL = p.AvatarURL
			}
			*p = *cur
			return nil
		}
	}
	if p.Role == "" {
		p.Role = model.ProfileRoleStudent
	}
	p.CreatedAt, p.UpdatedAt = time.Now(), time.Now()
	m.profiles = append(m.profiles, *p)
	return nil
}

func (m *memDB) UpdateProfile(ctx context.Context, p *model.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.profiles {
		if m.profiles[i].ID == p.ID {
			m.profiles[i].FullName, m.profiles[i].AvatarURL = p.FullName, p.AvatarURL
			*p = m.profiles[i]
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memDB) SetRole(ctx context.Context, id, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.profiles {
		if m.profiles[i].ID == id {
			m.profiles[i].Role = role
			return nil
		}
	}
	return repository.ErrNotFound
}

// classes

func (m *memDB) CreateClass(ctx context.Context, c *model.Class) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("CreateClass"); err != nil {
		return err
	}
	for _, existing := range m.classes {
		if existing.JoinCode == c.JoinCode {
			return uniqueErr(repository.JoinCodeConstraint)
		}
	}
	c.ID = uuid.NewString()
	c.CreatedAt, c.UpdatedAt = time.Now(), time.Now()
	m.classes = append(m.classes, *c)
	return nil
}

func (m *memDB) findClass(pred func(model.Class) bool) *model.Class {
	for _, c := range m.classes {
		if pred(c) {
			cp := c
			return &cp
		}
	}
	return nil
}

func (m *memDB) GetClassByID(ctx context.Context, id string) (*model.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findClass(func(c model.Class) bool { return c.ID == id }), nil
}

func (m *memDB) GetClassByJoinCode(ctx context.Context, code string) (*model.Class, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findClass(func(c model.Class) bool { return c.JoinCode == code }), nil
}

func (m *memDB) countMembers(classID string) int {
	n := 0
	for _, mem := range m.members {
		if mem.ClassID == classID {
			n++
		}
	}
	return n
}

func (m *memDB) ListClassesByUserID(ctx context.Context, userID string) ([]model.MemberClass, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.MemberClass{}
	for _, mem := range m.members {
		if mem.UserID != userID {
			continue
		}
		if c := m.findClass(func(c model.Class) bool { return c.ID == mem.ClassID }); c != nil {
			out = append(out, model.MemberClass{Class: *c, Role: mem.Role, MemberCount: m.countMembers(c.ID)})
		}
	}
	return out, nil
}

func (m *memDB) ListAllClasses(ctx context.Context) ([]model.ClassSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.ClassSummary{}
	for _, c := range m.classes {
		out = append(out, model.ClassSummary{Class: c, MemberCount: m.countMembers(c.ID)})
	}
	return out, nil
}

func (m *memDB) UpdateClass(ctx context.Context, c *model.Class) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.classes {
		if m.classes[i].ID == c.ID {
			m.classes[i].Name, m.classes[i].Description, m.classes[i].Section = c.Name, c.Description, c.Section
			*c = m.classes[i]
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memDB) UpdateJoinCode(ctx context.Context, id, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.classes {
		if c.JoinCode == code && c.ID != id {
			return uniqueErr(repository.JoinCodeConstraint)
		}
	}
	for i := range m.classes {
		if m.classes[i].ID == id {
			m.classes[i].JoinCode = code
			return nil
		}
	}
	return repository.ErrNotFound
}

// DeleteClass enforces the foreign keys the real schema has.
func (m *memDB) DeleteClass(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("DeleteClass"); err != nil {
		return err
	}
	for _, p := range m.posts {
		if p.ClassID == id {
			return errors.New("violates foreign key constraint posts_class_id_fkey")
		}
	}
	if m.countMembers(id) > 0 {
		return errors.New("violates foreign key constraint class_members_class_id_fkey")
	}
	for i, c := range m.classes {
		if c.ID == id {
			m.classes = append(m.classes[:i], m.classes[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memDB) GetStats(ctx context.Context) (*model.PlatformStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &model.PlatformStats{
		Profiles:    len(m.profiles),
		Classes:     len(m.classes),
		Members:     len(m.members),
		Submissions: len(m.submissions),
	}, nil
}

// members

func (m *memDB) AddMember(ctx context.Context, classID, userID, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("AddMember"); err != nil {
		return err
	}
	for _, mem := range m.members {
		if mem.ClassID == classID && mem.UserID == userID {
			return uniqueErr("class_members_pkey")
		}
	}
	m.members = append(m.members, model.ClassMember{ClassID: classID, UserID: userID, Role: role, JoinedAt: time.Now()})
	return nil
}

func (m *memDB) GetMember(ctx context.Context, classID, userID string) (*model.ClassMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, mem := range m.members {
		if mem.ClassID == classID && mem.UserID == userID {
			cp := mem
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memDB) ListMembers(ctx context.Context, classID string) ([]model.ClassMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.ClassMember{}
	for _, mem := range m.members {
		if mem.ClassID == classID {
			out = append(out, mem)
		}
	}
	return out, nil
}

func (m *memDB) UpdateRole(ctx context.Context, classID, userID, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.members {
		if m.members[i].ClassID == classID && m.members[i].UserID == userID {
			m.members[i].Role = role
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memDB) RemoveMember(ctx context.Context, classID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, mem := range m.members {
		if mem.ClassID == classID && mem.UserID == userID {
			m.members = append(m.members[:i], m.members[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memDB) DeleteMembersByClassID(ctx context.Context, classID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("DeleteMembersByClassID"); err != nil {
		return err
	}
	kept := m.members[:0]
	for _, mem := range m.members {
		if mem.ClassID != classID {
			kept = append(kept, mem)
		}
	}
	m.members = kept
	return nil
}

// posts

func (m *memDB) CreatePost(ctx context.Context, p *model.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = uuid.NewString()
	p.CreatedAt, p.UpdatedAt = time.Now(), time.Now()
	m.posts = append(m.posts, *p)
	return nil
}

func (m *memDB) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.posts {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memDB) ListPostsByClassID(ctx context.Context, classID string) ([]model.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Post{}
	for _, p := range m.posts {
		if p.ClassID == classID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memDB) UpdatePost(ctx context.Context, p *model.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.posts {
		if m.posts[i].ID == p.ID {
			m.posts[i].Title, m.posts[i].Body = p.Title, p.Body
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memDB) DeletePost(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.files {
		if f.PostID != nil && *f.PostID == id {
			return errors.New("violates foreign key constraint files_post_id_fkey")
		}
	}
	for i, p := range m.posts {
		if p.ID == id {
			m.posts = append(m.posts[:i], m.posts[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memDB) DeletePostsByClassID(ctx context.Context, classID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("DeletePostsByClassID"); err != nil {
		return err
	}
	kept := m.posts[:0]
	for _, p := range m.posts {
		if p.ClassID != classID {
			kept = append(kept, p)
		}
	}
	m.posts = kept
	return nil
}

// assignments

func (m *memDB) CreateAssignment(ctx context.Context, a *model.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = uuid.NewString()
	a.CreatedAt, a.UpdatedAt = time.Now(), time.Now()
	m.assignments = append(m.assignments, *a)
	return nil
}

func (m *memDB) GetAssignmentByID(ctx context.Context, id string) (*model.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.assignments {
		if a.ID == id {
			cp := a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memDB) ListAssignmentsByClassID(ctx context.Context, classID string) ([]model.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Assignment{}
	for _, a := range m.assignments {
		if a.ClassID == classID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memDB) UpdateAssignment(ctx context.Context, a *model.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.assignments {
		if m.assignments[i].ID == a.ID {
			files := a.Files
			m.assignments[i].Title, m.assignments[i].Instructions = a.Title, a.Instructions
			m.assignments[i].DueAt, m.assignments[i].MaxPoints = a.DueAt, a.MaxPoints
			*a = m.assignments[i]
			a.Files = files
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memDB) DeleteAssignment(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.submissions {
		if s.AssignmentID == id {
			return errors.New("violates foreign key constraint submissions_assignment_id_fkey")
		}
	}
	for i, a := range m.assignments {
		if a.ID == id {
			m.assignments = append(m.assignments[:i], m.assignments[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memDB) DeleteAssignmentsByClassID(ctx context.Context, classID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.assignments[:0]
	for _, a := range m.assignments {
		if a.ClassID != classID {
			kept = append(kept, a)
		}
	}
	m.assignments = kept
	return nil
}

// submissions

func (m *memDB) UpsertSubmission(ctx context.Context, s *model.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.Grade, s.GradedBy, s.GradedAt, s.Feedback = nil, nil, nil, ""
	s.SubmittedAt, s.UpdatedAt = time.Now(), time.Now()
	for i := range m.submissions {
		cur := &m.submissions[i]
		if cur.AssignmentID == s.AssignmentID && cur.StudentID == s.StudentID {
			s.ID = cur.ID
			*cur = *s
			return nil
		}
	}
	s.ID = uuid.NewString()
	m.submissions = append(m.submissions, *s)
	return nil
}

func (m *memDB) findSubmission(pred func(model.Submission) bool) *model.Submission {
	for _, s := range m.submissions {
		if pred(s) {
			cp := s
			return &cp
		}
	}
	return nil
}

func (m *memDB) GetSubmissionByID(ctx context.Context, id string) (*model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findSubmission(func(s model.Submission) bool { return s.ID == id }), nil
}

func (m *memDB) GetSubmissionByStudent(ctx context.Context, assignmentID, studentID string) (*model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findSubmission(func(s model.Submission) bool {
		return s.AssignmentID == assignmentID && s.StudentID == studentID
	}), nil
}

func (m *memDB) ListSubmissionsByAssignmentID(ctx context.Context, assignmentID string) ([]model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Submission{}
	for _, s := range m.submissions {
		if s.AssignmentID == assignmentID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memDB) GradeSubmission(ctx context.Context, s *model.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.submissions {
		if m.submissions[i].ID == s.ID {
			now := time.Now()
			s.GradedAt = &now
			m.submissions[i].Grade, m.submissions[i].Feedback = s.Grade, s.Feedback
			m.submissions[i].GradedBy, m.submissions[i].GradedAt = s.GradedBy, s.GradedAt
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memDB) deleteSubmissions(pred func(model.Submission) bool) {
	kept := m.submissions[:0]
	for _, s := range m.submissions {
		if !pred(s) {
			kept = append(kept, s)
		}
	}
	m.submissions = kept
}

func (m *memDB) DeleteSubmissionsByAssignmentID(ctx context.Context, assignmentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteSubmissions(func(s model.Submission) bool { return s.AssignmentID == assignmentID })
	return nil
}

func (m *memDB) DeleteSubmissionsByClassID(ctx context.Context, classID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteSubmissions(func(s model.Submission) bool { return s.ClassID == classID })
	return nil
}

// files

func (m *memDB) CreateFile(ctx context.Context, f *model.File) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("CreateFile"); err != nil {
		return err
	}
	f.ID = uuid.NewString()
	f.CreatedAt = time.Now()
	m.files = append(m.files, *f)
	return nil
}

func (m *memDB) GetFileByID(ctx context.Context, id string) (*model.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.files {
		if f.ID == id {
			cp := f
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memDB) listFiles(pred func(model.File) bool) []model.File {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.File{}
	for _, f := range m.files {
		if pred(f) {
			out = append(out, f)
		}
	}
	return out
}

func (m *memDB) ListFilesByClassID(ctx context.Context, classID string) ([]model.File, error) {
	return m.listFiles(func(f model.File) bool { return f.ClassID == classID }), nil
}

func (m *memDB) ListFilesByPostID(ctx context.Context, postID string) ([]model.File, error) {
	return m.listFiles(func(f model.File) bool { return f.PostID != nil && *f.PostID == postID }), nil
}

func (m *memDB) ListFilesByAssignmentID(ctx context.Context, assignmentID string) ([]model.File, error) {
	return m.listFiles(func(f model.File) bool { return f.AssignmentID != nil && *f.AssignmentID == assignmentID }), nil
}

func (m *memDB) ListFilesBySubmissionID(ctx context.Context, submissionID string) ([]model.File, error) {
	return m.listFiles(func(f model.File) bool { return f.SubmissionID != nil && *f.SubmissionID == submissionID }), nil
}

// DeleteFiles also drops playlist entries, like ON DELETE CASCADE does.
func (m *memDB) DeleteFiles(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	drop := map[string]bool{}
	for _, id := range ids {
		drop[id] = true
	}
	kept := m.files[:0]
	for _, f := range m.files {
		if !drop[f.ID] {
			kept = append(kept, f)
		}
	}
	m.files = kept
	entries := m.entries[:0]
	for _, e := range m.entries {
		if !drop[e.ID] {
			entries = append(entries, e)
		}
	}
	m.entries = entries
	return nil
}

// questions and answers

func (m *memDB) CreateQuestion(ctx context.Context, q *model.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q.ID = uuid.NewString()
	q.CreatedAt = time.Now()
	m.questions = append(m.questions, *q)
	return nil
}

func (m *memDB) GetQuestionByID(ctx context.Context, id string) (*model.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range m.questions {
		if q.ID == id {
			cp := q
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memDB) ListQuestionsByClassID(ctx context.Context, classID string) ([]model.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Question{}
	for _, q := range m.questions {
		if q.ClassID == classID {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *memDB) DeleteQuestion(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.answers {
		if a.QuestionID == id {
			return errors.New("violates foreign key constraint answers_question_id_fkey")
		}
	}
	for i, q := range m.questions {
		if q.ID == id {
			m.questions = append(m.questions[:i], m.questions[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memDB) DeleteQuestionsByClassID(ctx context.Context, classID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.questions[:0]
	for _, q := range m.questions {
		if q.ClassID != classID {
			kept = append(kept, q)
		}
	}
	m.questions = kept
	return nil
}

func (m *memDB) CreateAnswer(ctx context.Context, a *model.Answer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = uuid.NewString()
	a.CreatedAt = time.Now()
	m.answers = append(m.answers, *a)
	return nil
}

func (m *memDB) GetAnswerByID(ctx context.Context, id string) (*model.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.answers {
		if a.ID == id {
			cp := a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memDB) ListAnswersByClassID(ctx context.Context, classID string) ([]model.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Answer{}
	for _, a := range m.answers {
		if a.ClassID == classID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memDB) deleteAnswers(pred func(model.Answer) bool) {
	kept := m.answers[:0]
	for _, a := range m.answers {
		if !pred(a) {
			kept = append(kept, a)
		}
	}
	m.answers = kept
}

func (m *memDB) DeleteAnswer(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.answers)
	m.deleteAnswers(func(a model.Answer) bool { return a.ID == id })
	if len(m.answers) == before {
		return repository.ErrNotFound
	}
	return nil
}

func (m *memDB) DeleteAnswersByQuestionID(ctx context.Context, questionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteAnswers(func(a model.Answer) bool { return a.QuestionID == questionID })
	return nil
}

func (m *memDB) DeleteAnswersByClassID(ctx context.Context, classID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteAnswers(func(a model.Answer) bool { return a.ClassID == classID })
	return nil
}

// playlists

func (m *memDB) CreatePlaylist(ctx context.Context, p *model.Playlist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now()
	m.playlists = append(m.playlists, *p)
	return nil
}

func (m *memDB) GetPlaylistByID(ctx context.Context, id string) (*model.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.playlists {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memDB) ListPlaylistsByClassID(ctx context.Context, classID string) ([]model.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Playlist{}
	for _, p := range m.playlists {
		if p.ClassID == classID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memDB) DeletePlaylist(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.PlaylistID == id {
			return errors.New("violates foreign key constraint playlist_files_playlist_id_fkey")
		}
	}
	for i, p := range m.playlists {
		if p.ID == id {
			m.playlists = append(m.playlists[:i], m.playlists[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memDB) DeletePlaylistsByClassID(ctx context.Context, classID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.playlists[:0]
	for _, p := range m.playlists {
		if p.ClassID != classID {
			kept = append(kept, p)
		}
	}
	m.playlists = kept
	return nil
}

func (m *memDB) AddFile(ctx context.Context, playlistID, fileID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	position := 0
	for _, e := range m.entries {
		if e.PlaylistID != playlistID {
			continue
		}
		if e.ID == fileID {
			return 0, uniqueErr("playlist_files_pkey")
		}
		if e.Position > position {
			position = e.Position
		}
	}
	for _, f := range m.files {
		if f.ID == fileID {
			m.entries = append(m.entries, model.PlaylistFile{PlaylistID: playlistID, Position: position + 1, File: f})
			return position + 1, nil
		}
	}
	return 0, fmt.Errorf("file %s does not exist", fileID)
}

func (m *memDB) RemoveFile(ctx context.Context, playlistID, fileID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.entries {
		if e.PlaylistID == playlistID && e.ID == fileID {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memDB) ListPlaylistFilesByClassID(ctx context.Context, classID string) ([]model.PlaylistFile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.PlaylistFile{}
	for _, e := range m.entries {
		if e.ClassID == classID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (m *memDB) DeletePlaylistFilesByPlaylistID(ctx context.Context, playlistID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.PlaylistID != playlistID {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return nil
}

func (m *memDB) DeletePlaylistFilesByClassID(ctx context.Context, classID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.ClassID != classID {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return nil
}

// memStorage is an ObjectStorage held in a map
type memStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploadErr error
	removeErr error
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}}
}

func (s *memStorage) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return s.PublicURL(key), nil
}

func (s *memStorage) Remove(ctx context.Context, keys ...string) error {
	if s.removeErr != nil {
		return s.removeErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.objects, k)
	}
	return nil
}

func (s *memStorage) PublicURL(key string) string {
	return "https://storage.test/class-files/" + key
}

func (s *memStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

type recordedEvent struct {
	Type    string
	ClassID string
	ActorID string
	Data    any
}

type memEmitter struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (e *memEmitter) Emit(ctx context.Context, eventType, classID, actorID string, data any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, recordedEvent{eventType, classID, actorID, data})
}

func (e *memEmitter) types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []string
	for _, ev := range e.events {
		out = append(out, ev.Type)
	}
	return out
}

// fixture wires every service over one memDB.
type fixture struct {
	db          *memDB
	storage     *memStorage
	events      *memEmitter
	files       FileService
	classes     ClassService
	members     MemberService
	posts       PostService
	assignments AssignmentService
	submissions SubmissionService
	questions   QuestionService
	playlists   PlaylistService
	admin       AdminService
	profiles    ProfileService
	dashboard   DashboardService
}

func newFixture() *fixture {
	db := newMemDB()
	st := newMemStorage()
	ev := &memEmitter{}
	logger := zerolog.Nop()
	repos := db.repos()

	f := &fixture{db: db, storage: st, events: ev}
	f.files = NewFileService(repos, st, logger)
	f.classes = NewClassService(repos, f.files, ev, logger)
	f.members = NewMemberService(repos, ev, logger)
	f.posts = NewPostService(repos, f.files, logger)
	f.assignments = NewAssignmentService(repos, f.files, logger)
	f.submissions = NewSubmissionService(repos, f.files, ev, logger)
	f.questions = NewQuestionService(repos, logger)
	f.playlists = NewPlaylistService(repos, logger)
	f.admin = NewAdminService(repos, f.classes, logger)
	f.profiles = NewProfileService(db)
	f.dashboard = NewDashboardService(repos, DashboardDeps{
		Profiles:    f.profiles,
		Classes:     f.classes,
		Members:     f.members,
		Posts:       f.posts,
		Assignments: f.assignments,
		Questions:   f.questions,
		Playlists:   f.playlists,
		Admin:       f.admin,
	})
	return f
}

func textUpload(name, body string) Upload {
	return Upload{Name: name, ContentType: "text/plain", Size: int64(len(body)), Body: strings.NewReader(body)}
}
