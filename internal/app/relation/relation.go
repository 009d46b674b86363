// internal/app/relation/relation.go

// Package relation maintains the parent/child forest over events and the
// event membership rows. The forest's only global invariant is acyclicity,
// enforced lazily with an ancestor-chain walk at the moment of attachment
// rather than with a cached ancestor index.
package relation

import (
	"context"
	"errors"
	"strings"
	"time"

	eventstore "github.com/nsu/musclub/internal/app/store/events"
	memberstore "github.com/nsu/musclub/internal/app/store/members"
	userstore "github.com/nsu/musclub/internal/app/store/users"
	"github.com/nsu/musclub/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// MaxRoleLen is the longest membership role accepted after trimming.
const MaxRoleLen = 64

var (
	// ErrEventNotFound is returned when a referenced event does not resolve.
	ErrEventNotFound = errors.New("event not found")
	// ErrUserNotFound is returned when a referenced user does not resolve.
	ErrUserNotFound = errors.New("user not found")
	// ErrMemberNotFound is returned when the (event, user) membership does not exist.
	ErrMemberNotFound = errors.New("membership not found")
	// ErrCycle is returned when an attach would make an event its own ancestor.
	ErrCycle = errors.New("cycle detected")
	// ErrNotDirectChild is returned when a detach target is not a direct child of the given parent.
	ErrNotDirectChild = errors.New("not a direct child")
	// ErrBadRole is returned when a membership role is blank or too long.
	ErrBadRole = errors.New("role must be non-blank and at most 64 characters")
)

// EventStore is the slice of the event collection the service needs.
type EventStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Event, error)
	Create(ctx context.Context, e models.Event) (models.Event, error)
	FindByParent(ctx context.Context, parentID primitive.ObjectID) ([]models.Event, error)
	SetParent(ctx context.Context, childID primitive.ObjectID, parentID *primitive.ObjectID) error
}

// UserStore resolves users referenced by membership operations.
type UserStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error)
}

// MemberStore is the slice of the event_members collection the service needs.
type MemberStore interface {
	ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.EventMember, error)
	Upsert(ctx context.Context, eventID, userID primitive.ObjectID, role string) (models.EventMember, error)
	Remove(ctx context.Context, eventID, userID primitive.ObjectID) error
}

// MemberSummary is what callers see for one event participant.
type MemberSummary struct {
	UserID   primitive.ObjectID `json:"user_id"`
	Username string             `json:"username"`
	Email    string             `json:"email"`
	Role     string             `json:"role"`
	AddedAt  time.Time          `json:"added_at"`
}

// TreeNode is a transient, view-only materialization of a subtree.
// It is produced on demand and never persisted.
type TreeNode struct {
	ID        primitive.ObjectID `json:"id"`
	Title     string             `json:"title"`
	StartTime time.Time          `json:"start_time"`
	Members   []MemberSummary    `json:"members"`
	Children  []TreeNode         `json:"children"`
}

// Service implements the hierarchy and membership operations.
type Service struct {
	events  EventStore
	users   UserStore
	members MemberStore
	log     *zap.Logger
}

func New(events EventStore, users UserStore, members MemberStore, logger *zap.Logger) *Service {
	return &Service{events: events, users: users, members: members, log: logger}
}

// CreateSubEvent persists a new event whose parent is parentID. A freshly
// created node cannot be its own ancestor, so no cycle check is needed.
func (s *Service) CreateSubEvent(ctx context.Context, parentID primitive.ObjectID, e models.Event) (models.Event, error) {
	parent, err := s.getEvent(ctx, parentID)
	if err != nil {
		return models.Event{}, err
	}
	e.ParentID = &parent.ID
	return s.events.Create(ctx, e)
}

// AttachChild makes child a direct child of parent. It walks the parent
// chain starting at the prospective parent upward; if the child appears
// anywhere on that chain (the parent itself included) the attach is
// rejected with ErrCycle and nothing is mutated. Attaching a child to its
// current parent succeeds as a no-op: the child itself is excluded from
// the walk, and rewriting the same link is harmless.
func (s *Service) AttachChild(ctx context.Context, parentID, childID primitive.ObjectID) error {
	parent, err := s.getEvent(ctx, parentID)
	if err != nil {
		return err
	}
	child, err := s.getEvent(ctx, childID)
	if err != nil {
		return err
	}

	onChain, err := s.isAncestorOrSelf(ctx, child.ID, parent)
	if err != nil {
		return err
	}
	if onChain {
		return ErrCycle
	}

	return s.events.SetParent(ctx, child.ID, &parent.ID)
}

// DetachChild clears child's parent link, but only when parent is its
// current direct parent. A child with no parent fails the same check.
func (s *Service) DetachChild(ctx context.Context, parentID, childID primitive.ObjectID) error {
	parent, err := s.getEvent(ctx, parentID)
	if err != nil {
		return err
	}
	child, err := s.getEvent(ctx, childID)
	if err != nil {
		return err
	}

	if child.ParentID == nil || *child.ParentID != parent.ID {
		return ErrNotDirectChild
	}

	return s.events.SetParent(ctx, child.ID, nil)
}

// ListMembers returns the event's member summaries in insertion order.
// Rows whose user has vanished (delete cascade lag) are skipped.
func (s *Service) ListMembers(ctx context.Context, eventID primitive.ObjectID) ([]MemberSummary, error) {
	if _, err := s.getEvent(ctx, eventID); err != nil {
		return nil, err
	}

	rows, err := s.members.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	out := make([]MemberSummary, 0, len(rows))
	for _, m := range rows {
		u, err := s.users.GetByID(ctx, m.UserID)
		if err != nil {
			if errors.Is(err, userstore.ErrNotFound) {
				s.log.Warn("membership row references missing user",
					zap.String("event_id", eventID.Hex()),
					zap.String("user_id", m.UserID.Hex()))
				continue
			}
			return nil, err
		}
		out = append(out, summary(u, m))
	}
	return out, nil
}

// UpsertMember adds the user to the event or updates their role. The
// returned summary is built from the event and user already resolved here;
// nothing is re-fetched.
func (s *Service) UpsertMember(ctx context.Context, eventID, userID primitive.ObjectID, role string) (MemberSummary, error) {
	if _, err := s.getEvent(ctx, eventID); err != nil {
		return MemberSummary{}, err
	}
	u, err := s.getUser(ctx, userID)
	if err != nil {
		return MemberSummary{}, err
	}

	role = strings.TrimSpace(role)
	if role == "" || len(role) > MaxRoleLen {
		return MemberSummary{}, ErrBadRole
	}

	m, err := s.members.Upsert(ctx, eventID, u.ID, role)
	if err != nil {
		return MemberSummary{}, err
	}
	return summary(u, m), nil
}

// RemoveMember deletes the (event, user) membership row.
func (s *Service) RemoveMember(ctx context.Context, eventID, userID primitive.ObjectID) error {
	if _, err := s.getEvent(ctx, eventID); err != nil {
		return err
	}
	if err := s.members.Remove(ctx, eventID, userID); err != nil {
		if errors.Is(err, memberstore.ErrNotFound) {
			return ErrMemberNotFound
		}
		return err
	}
	return nil
}

// GetTree materializes the subtree rooted at eventID down to depth levels.
// depth is clamped to a minimum of 1; depth 1 returns the root with an
// empty children list. No cycle guard is needed: AttachChild keeps the
// forest acyclic.
func (s *Service) GetTree(ctx context.Context, eventID primitive.ObjectID, depth int) (TreeNode, error) {
	root, err := s.getEvent(ctx, eventID)
	if err != nil {
		return TreeNode{}, err
	}
	if depth < 1 {
		depth = 1
	}
	return s.buildTree(ctx, root, depth)
}

func (s *Service) buildTree(ctx context.Context, e models.Event, depth int) (TreeNode, error) {
	node := TreeNode{
		ID:        e.ID,
		Title:     e.Title,
		StartTime: e.StartTime,
		Members:   []MemberSummary{},
		Children:  []TreeNode{},
	}

	rows, err := s.members.ListByEvent(ctx, e.ID)
	if err != nil {
		return TreeNode{}, err
	}
	for _, m := range rows {
		u, err := s.users.GetByID(ctx, m.UserID)
		if err != nil {
			if errors.Is(err, userstore.ErrNotFound) {
				continue
			}
			return TreeNode{}, err
		}
		node.Members = append(node.Members, summary(u, m))
	}

	if depth <= 1 {
		return node, nil
	}

	children, err := s.events.FindByParent(ctx, e.ID)
	if err != nil {
		return TreeNode{}, err
	}
	for _, ch := range children {
		sub, err := s.buildTree(ctx, ch, depth-1)
		if err != nil {
			return TreeNode{}, err
		}
		node.Children = append(node.Children, sub)
	}
	return node, nil
}

// isAncestorOrSelf walks node's parent chain (node included) and reports
// whether candidate appears on it.
func (s *Service) isAncestorOrSelf(ctx context.Context, candidate primitive.ObjectID, node models.Event) (bool, error) {
	cur := node
	for {
		if cur.ID == candidate {
			return true, nil
		}
		if cur.ParentID == nil {
			return false, nil
		}
		next, err := s.getEvent(ctx, *cur.ParentID)
		if err != nil {
			return false, err
		}
		cur = next
	}
}

func (s *Service) getEvent(ctx context.Context, id primitive.ObjectID) (models.Event, error) {
	e, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, eventstore.ErrNotFound) {
			return models.Event{}, ErrEventNotFound
		}
		return models.Event{}, err
	}
	return e, nil
}

func (s *Service) getUser(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return u, nil
}

func summary(u models.User, m models.EventMember) MemberSummary {
	return MemberSummary{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     m.Role,
		AddedAt:  m.AddedAt,
	}
}
