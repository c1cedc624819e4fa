package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lotas/arxivgruppen/internal/group"
)

// The extension reports a destroyed group with this error string; it is
// mapped onto group.ErrNoGroup so the coordinator can recover.
const errNoGroup = "no such group"

func respErr(action string, resp IncomingMsg) error {
	if resp.OK != nil && *resp.OK {
		return nil
	}
	if strings.Contains(strings.ToLower(resp.Error), errNoGroup) {
		return fmt.Errorf("%s: %w", action, group.ErrNoGroup)
	}
	return fmt.Errorf("%s: extension error: %s", action, resp.Error)
}

// CreateGroup creates a browser tab group containing the given tabs.
func (s *Server) CreateGroup(ctx context.Context, tabIDs []int) (int, error) {
	resp, err := s.Call(ctx, OutgoingMsg{
		ID:     uuid.NewString(),
		Action: "createGroup",
		TabIDs: tabIDs,
	})
	if err != nil {
		return 0, err
	}
	if err := respErr("createGroup", resp); err != nil {
		return 0, err
	}
	return resp.GroupID, nil
}

// AddToGroup adds tabs to an existing group. Returns group.ErrNoGroup
// when the browser no longer knows the group.
func (s *Server) AddToGroup(ctx context.Context, groupID int, tabIDs []int) error {
	resp, err := s.Call(ctx, OutgoingMsg{
		ID:      uuid.NewString(),
		Action:  "addToGroup",
		GroupID: groupID,
		TabIDs:  tabIDs,
	})
	if err != nil {
		return err
	}
	return respErr("addToGroup", resp)
}

// SetGroupAppearance sets a group's label and discrete color.
func (s *Server) SetGroupAppearance(ctx context.Context, groupID int, label, colorName string) error {
	resp, err := s.Call(ctx, OutgoingMsg{
		ID:      uuid.NewString(),
		Action:  "setGroupAppearance",
		GroupID: groupID,
		Name:    label,
		Color:   colorName,
	})
	if err != nil {
		return err
	}
	return respErr("setGroupAppearance", resp)
}

// GroupMembers returns the tabs currently in a group.
func (s *Server) GroupMembers(ctx context.Context, groupID int) ([]int, error) {
	resp, err := s.Call(ctx, OutgoingMsg{
		ID:      uuid.NewString(),
		Action:  "queryGroup",
		GroupID: groupID,
	})
	if err != nil {
		return nil, err
	}
	if err := respErr("queryGroup", resp); err != nil {
		return nil, err
	}
	return resp.TabIDs, nil
}

// SetTabTitle rewrites a tab's displayed title.
func (s *Server) SetTabTitle(ctx context.Context, tabID int, title string) error {
	resp, err := s.Call(ctx, OutgoingMsg{
		ID:     uuid.NewString(),
		Action: "setTabTitle",
		TabID:  tabID,
		Title:  title,
	})
	if err != nil {
		return err
	}
	return respErr("setTabTitle", resp)
}

// TabURL returns the URL a tab currently shows. The pipeline uses this
// to confirm a tab has not navigated away before mutating it.
func (s *Server) TabURL(ctx context.Context, tabID int) (string, error) {
	resp, err := s.Call(ctx, OutgoingMsg{
		ID:     uuid.NewString(),
		Action: "queryTab",
		TabID:  tabID,
	})
	if err != nil {
		return "", err
	}
	if err := respErr("queryTab", resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

// RequestSnapshot asks the extension for the full open-tab list. The
// reply arrives as a "snapshot" event, not as a Call response.
func (s *Server) RequestSnapshot() error {
	return s.send(OutgoingMsg{ID: uuid.NewString(), Action: "snapshot"})
}
