package api

import (
	"context"
	"encoding/json"
	"fmt"

	"crmdeck/internal/listctl"
	"crmdeck/internal/model"
)

// EntityStore adapts one family of backend endpoints to listctl.Store.
// The endpoint names mirror the backend's historical route naming
// (get-lead-list / create-lead / update-lead / delete-lead and
// friends), which is irregular enough that each store spells its four
// paths out.
type EntityStore[E listctl.Entity] struct {
	c          *Client
	listPath   string
	createPath string
	updatePath string
	deletePath string
}

func (s *EntityStore[E]) List(ctx context.Context) ([]E, error) {
	data, err := s.c.post(ctx, s.listPath, listBody{Page: 1})
	if err != nil {
		return nil, err
	}
	var items []E
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", s.listPath, err)
	}
	return items, nil
}

func (s *EntityStore[E]) Create(ctx context.Context, draft E) (E, error) {
	return s.send(ctx, s.createPath, draft)
}

// Update sends the full draft; the draft carries the target id because
// edit forms start from a copy of the stored entity.
func (s *EntityStore[E]) Update(ctx context.Context, draft E) (E, error) {
	return s.send(ctx, s.updatePath, draft)
}

func (s *EntityStore[E]) send(ctx context.Context, path string, draft E) (E, error) {
	var zero E
	data, err := s.c.post(ctx, path, draft)
	if err != nil {
		return zero, err
	}
	var saved E
	if err := json.Unmarshal(data, &saved); err != nil {
		return zero, fmt.Errorf("decode %s response: %w", path, err)
	}
	return saved, nil
}

func (s *EntityStore[E]) Delete(ctx context.Context, id string) error {
	_, err := s.c.post(ctx, s.deletePath, map[string]string{"id": id})
	return err
}

func (c *Client) Leads() *EntityStore[model.Lead] {
	return &EntityStore[model.Lead]{c: c,
		listPath:   "/get-lead-list",
		createPath: "/create-lead",
		updatePath: "/update-lead",
		deletePath: "/delete-lead",
	}
}

func (c *Client) Users() *EntityStore[model.User] {
	return &EntityStore[model.User]{c: c,
		listPath:   "/get-user-list",
		createPath: "/add-user",
		updatePath: "/update-user",
		deletePath: "/delete-user",
	}
}

func (c *Client) Payments() *EntityStore[model.Payment] {
	return &EntityStore[model.Payment]{c: c,
		listPath:   "/get-payment-list",
		createPath: "/add-payment",
		updatePath: "/update-payment",
		deletePath: "/delete-payment",
	}
}

func (c *Client) FollowUps() *EntityStore[model.FollowUp] {
	return &EntityStore[model.FollowUp]{c: c,
		listPath:   "/get-followup-list",
		createPath: "/add-followup",
		updatePath: "/update-followup",
		deletePath: "/delete-followup",
	}
}

func (c *Client) Notifications() *EntityStore[model.Notification] {
	return &EntityStore[model.Notification]{c: c,
		listPath:   "/get-notification-list",
		createPath: "/add-notification",
		updatePath: "/update-notification",
		deletePath: "/delete-notification",
	}
}

func (c *Client) Assignments() *EntityStore[model.Assignment] {
	return &EntityStore[model.Assignment]{c: c,
		listPath:   "/lead-assign-list",
		createPath: "/lead-assign",
		updatePath: "/update-lead-assign",
		deletePath: "/delete-lead-assign",
	}
}

func (c *Client) Projects() *EntityStore[model.Project] {
	return &EntityStore[model.Project]{c: c,
		listPath:   "/get-project-list",
		createPath: "/add-project",
		updatePath: "/update-project",
		deletePath: "/delete-project",
	}
}

func (c *Client) Quotations() *EntityStore[model.Quotation] {
	return &EntityStore[model.Quotation]{c: c,
		listPath:   "/get-quotation-list",
		createPath: "/add-quotation",
		updatePath: "/update-quotation",
		deletePath: "/delete-quotation",
	}
}
