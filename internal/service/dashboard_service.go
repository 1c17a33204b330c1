package service

import (
	"context"

	"classroom/internal/model"
)

// Home is what a signed-in user lands on
type Home struct {
	Profile *model.Profile      `json:"profile"`
	Classes []model.MemberClass `json:"classes"`
}

// ClassDashboard is the full class page
type ClassDashboard struct {
	Class       *model.Class        `json:"class"`
	Role        string              `json:"role"`
	CanManage   bool                `json:"can_manage"`
	IsStaff     bool                `json:"is_staff"`
	Members     []model.ClassMember `json:"members"`
	Posts       []model.Post        `json:"posts"`
	Assignments []model.Assignment  `json:"assignments"`
	Questions   []model.Question    `json:"questions"`
	Playlists   []model.Playlist    `json:"playlists"`
}

// AdminDashboard is the platform overview
type AdminDashboard struct {
	Stats   *model.PlatformStats `json:"stats"`
	Classes []model.ClassSummary `json:"classes"`
}

// DashboardService assembles the view payloads from the other services
type DashboardService interface {
	Home(ctx context.Context, userID string) (*Home, error)
	ClassDashboard(ctx context.Context, userID, classID string) (*ClassDashboard, error)
	AdminDashboard(ctx context.Context, userID string) (*AdminDashboard, error)
}

type dashboardService struct {
	access      *accessChecker
	profiles    ProfileService
	classes     ClassService
	members     MemberService
	posts       PostService
	assignments AssignmentService
	questions   QuestionService
	playlists   PlaylistService
	admin       AdminService
}

// DashboardDeps lists the services the views read from
type DashboardDeps struct {
	Profiles    ProfileService
	Classes     ClassService
	Members     MemberService
	Posts       PostService
	Assignments AssignmentService
	Questions   QuestionService
	Playlists   PlaylistService
	Admin       AdminService
}

func NewDashboardService(repos Repositories, deps DashboardDeps) DashboardService {
	return &dashboardService{
		access:      newAccessChecker(repos),
		profiles:    deps.Profiles,
		classes:     deps.Classes,
		members:     deps.Members,
		posts:       deps.Posts,
		assignments: deps.Assignments,
		questions:   deps.Questions,
		playlists:   deps.Playlists,
		admin:       deps.Admin,
	}
}

func (s *dashboardService) Home(ctx context.Context, userID string) (*Home, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	classes, err := s.classes.ListClassesForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Home{Profile: profile, Classes: classes}, nil
}

func (s *dashboardService) ClassDashboard(ctx context.Context, userID, classID string) (*ClassDashboard, error) {
	a, err := s.access.load(ctx, userID, classID)
	if err != nil {
		return nil, err
	}
	d := &ClassDashboard{Class: a.Class, Role: a.Role(), CanManage: a.CanManage(), IsStaff: a.IsStaff()}
	if d.Members, err = s.members.ListMembers(ctx, userID, classID); err != nil {
		return nil, err
	}
	if d.Posts, err = s.posts.ListPosts(ctx, userID, classID); err != nil {
		return nil, err
	}
	if d.Assignments, err = s.assignments.ListAssignments(ctx, userID, classID); err != nil {
		return nil, err
	}
	if d.Questions, err = s.questions.ListQuestions(ctx, userID, classID); err != nil {
		return nil, err
	}
	if d.Playlists, err = s.playlists.ListPlaylists(ctx, userID, classID); err != nil {
		return nil, err
	}
	// Only staff see the join code.
	if !d.IsStaff {
		c := *d.Class
		c.JoinCode = ""
		d.Class = &c
	}
	return d, nil
}

func (s *dashboardService) AdminDashboard(ctx context.Context, userID string) (*AdminDashboard, error) {
	stats, err := s.admin.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}
	classes, err := s.admin.ListClasses(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &AdminDashboard{Stats: stats, Classes: classes}, nil
}
