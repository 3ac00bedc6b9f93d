package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/naveenspark/arena/internal/config"
	"github.com/naveenspark/arena/pkg/client"
	"github.com/naveenspark/arena/pkg/domain"
)

const requestTimeout = 15 * time.Second

func parseRoomID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(arg, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid room id %q", arg)
	}
	return id, nil
}

func newRoomCmd(c *cli) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "room <id>",
		Short: "Open a room directly",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRoomID(args[0])
			if err != nil {
				return err
			}
			return c.runTUI(cmd.Context(), id, password)
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "room password")
	return cmd
}

func newLobbyCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "lobby",
		Short: "Start at the room prompt",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTUI(cmd.Context(), 0, "")
		},
	}
}

func newDungeonsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "dungeons",
		Short: "List the dungeons a room can run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()
			dungeons, err := c.api.ListDungeons(ctx)
			if err != nil {
				return err
			}
			if len(dungeons) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No dungeons.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tLEVEL")
			for _, d := range dungeons {
				fmt.Fprintf(w, "%d\t%s\t%d\n", d.ID, d.Name, d.Level)
			}
			return w.Flush()
		},
	}
}

func newLeaveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "leave <id>",
		Short: "Leave a room without opening it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRoomID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()
			me, err := c.identity(ctx)
			if err != nil {
				return err
			}
			if err := c.api.LeaveRoom(ctx, id, me.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Left room %d.\n", id)
			return nil
		},
	}
}

func newResetCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "reset <id>",
		Short: "Reset a room you host back to waiting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRoomID(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()
			me, err := c.identity(ctx)
			if err != nil {
				return err
			}
			if err := c.api.ResetRoom(ctx, id, me.ID); err != nil {
				if errors.Is(err, domain.ErrNotHost) {
					return fmt.Errorf("only the host can reset room %d", id)
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Room %d reset.\n", id)
			return nil
		},
	}
}

func newLoginCmd(c *cli) *cobra.Command {
	var token string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store an API token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Paste your token: ")
				var err error
				token, err = readLine(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}
			token = strings.TrimSpace(token)
			if token == "" {
				return errors.New("no token given")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
			defer cancel()
			me, err := client.New(c.cfg.APIURL, token).GetMe(ctx)
			if err != nil {
				if client.IsStatus(err, http.StatusUnauthorized) {
					return errors.New("token rejected by the server")
				}
				return fmt.Errorf("verify token: %w", err)
			}
			if err := config.SaveToken(c.cfg.TokenFile, token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Authenticated as %s\n", me.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "token to store instead of reading stdin")
	return cmd
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read token: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := config.RemoveToken(c.cfg.TokenFile)
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintln(cmd.OutOrStdout(), "Already logged out.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "arena "+version)
			return nil
		},
	}
}
