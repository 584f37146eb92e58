// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"codeberg.org/pixivfe/biliapi/core"
	"codeberg.org/pixivfe/biliapi/core/requests"
	"codeberg.org/pixivfe/biliapi/core/retry"
)

// read runs a read-only call under the retry policy and prints its result.
func read[T any](cmd *cobra.Command, a *app, op func(context.Context) (T, error)) error {
	v, err := retry.Value(cmd.Context(), a.retryPolicy(), op)
	if err != nil {
		return err
	}

	return write(cmd.OutOrStdout(), a.format, v)
}

// done reports a successful write call.
func done(cmd *cobra.Command, a *app, action string) error {
	return write(cmd.OutOrStdout(), a.format, map[string]string{"status": "ok", "action": action})
}

func parseMid(s string) (int64, error) {
	mid, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid mid %q: %w", s, err)
	}

	return mid, nil
}

func newNavCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "nav",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return read(cmd, a, a.client.GetNavInfo)
		},
	}
}

func newUserCmd(a *app) *cobra.Command {
	user := &cobra.Command{
		Use:   "user",
		Short: "Look up and follow users",
	}

	user.AddCommand(&cobra.Command{
		Use:   "card <mid>",
		Short: "Show a user's hover card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mid, err := parseMid(args[0])
			if err != nil {
				return err
			}

			return read(cmd, a, func(ctx context.Context) (core.UserCard, error) {
				return a.client.GetUserCard(ctx, mid)
			})
		},
	})

	user.AddCommand(&cobra.Command{
		Use:   "space <mid>",
		Short: "Show a user's space header",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mid, err := parseMid(args[0])
			if err != nil {
				return err
			}

			return read(cmd, a, func(ctx context.Context) (core.UserSpaceInfo, error) {
				return a.client.GetUserSpaceInfo(ctx, mid)
			})
		},
	})

	actions := map[string]core.RelationAction{
		"follow":     core.Follow,
		"unfollow":   core.Unfollow,
		"block":      core.Block,
		"unblock":    core.Unblock,
		"remove-fan": core.RemoveFan,
	}

	user.AddCommand(&cobra.Command{
		Use:       "relation <follow|unfollow|block|unblock|remove-fan> <mid>",
		Short:     "Change the relation to a user",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"follow", "unfollow", "block", "unblock", "remove-fan"},
		RunE: func(cmd *cobra.Command, args []string) error {
			act, ok := actions[args[0]]
			if !ok {
				return fmt.Errorf("unknown relation action %q", args[0])
			}

			mid, err := parseMid(args[1])
			if err != nil {
				return err
			}

			if err := a.client.ModifyRelation(cmd.Context(), mid, act); err != nil {
				return err
			}

			return done(cmd, a, args[0])
		},
	})

	return user
}

func newVideoCmd(a *app) *cobra.Command {
	video := &cobra.Command{
		Use:   "video",
		Short: "Inspect and like videos",
	}

	video.AddCommand(&cobra.Command{
		Use:   "view <BV id|av id>",
		Short: "Show a video's full view payload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := core.ParseVideoID(args[0])
			if err != nil {
				return err
			}

			return read(cmd, a, func(ctx context.Context) (requests.Opaque, error) {
				return a.client.GetVideoView(ctx, id)
			})
		},
	})

	var undo bool

	like := &cobra.Command{
		Use:   "like <BV id|av id>",
		Short: "Like a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := core.ParseVideoID(args[0])
			if err != nil {
				return err
			}

			if err := a.client.LikeVideo(cmd.Context(), id, !undo); err != nil {
				return err
			}

			action := "like " + id.String()
			if undo {
				action = "unlike " + id.String()
			}

			return done(cmd, a, action)
		},
	}
	like.Flags().BoolVar(&undo, "undo", false, "withdraw the like instead")

	video.AddCommand(like)

	return video
}

func newSearchCmd(a *app) *cobra.Command {
	var (
		opts       core.SearchOptions
		searchType string
	)

	cmd := &cobra.Command{
		Use:   "search <keyword>...",
		Short: "Search one kind of content",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Type = core.SearchType(searchType)
			opts.Keyword = strings.Join(args, " ")

			return read(cmd, a, func(ctx context.Context) (core.SearchResult, error) {
				return a.client.SearchByType(ctx, opts)
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&searchType, "type", "t", string(core.SearchVideo), "search type, e.g. video, bili_user, article")
	flags.IntVarP(&opts.Page, "page", "p", 0, "page number")
	flags.StringVar(&opts.Order, "order", "", "result order, e.g. pubdate, click, fans")
	flags.IntVar(&opts.Duration, "duration", 0, "video length filter, 1-4")
	flags.Int64Var(&opts.TID, "tid", 0, "video partition id")
	flags.IntVar(&opts.UserType, "user-type", 0, "user type filter, 1-3")

	return cmd
}

func newSignCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sign <text>...",
		Short: "Replace the profile signature",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.UpdateSignature(cmd.Context(), strings.Join(args, " ")); err != nil {
				return err
			}

			return done(cmd, a, "update signature")
		},
	}
}

// ticketOutput is what the ticket command prints.
type ticketOutput struct {
	Ticket    string    `json:"ticket"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	ImgKey    string    `json:"img_key"`
	SubKey    string    `json:"sub_key"`
}

func newTicketCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ticket",
		Short: "Issue a bili_ticket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tk, err := a.client.GenWebTicket(cmd.Context())
			if err != nil {
				return err
			}

			return write(cmd.OutOrStdout(), a.format, ticketOutput{
				Ticket:    tk.Value,
				CreatedAt: tk.CreatedAt,
				ExpiresAt: tk.ExpiresAt(),
				ImgKey:    tk.Keys.ImgKey,
				SubKey:    tk.Keys.SubKey,
			})
		},
	}
}
