// ABOUTME: Subcommands of capturectl
// ABOUTME: Each command maps onto one capture library operation

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/anhbatoichoi/content-capture-universe/capturelib"
	"github.com/anhbatoichoi/content-capture-universe/core/markdown"
)

// readInput reads the file named by args[0], or stdin when no file is given
func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	data, err := os.ReadFile(args[0])
	return string(data), err
}

func convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert [file]",
		Short: "Convert HTML from a file or stdin to Markdown",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			html, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), markdown.Convert(html))
			return err
		},
	}
}

func captureCmd(a *app) *cobra.Command {
	var pageURL string
	var raw bool
	cmd := &cobra.Command{
		Use:   "capture --url URL [file]",
		Short: "Extract readable content from saved page HTML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			html, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			return a.withClient(cmd.Context(), cmd.ErrOrStderr(), false, func(c *capturelib.Client) error {
				page, err := c.Capture(cmd.Context(), pageURL, html, !raw)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), page)
			})
		},
	}
	cmd.Flags().StringVar(&pageURL, "url", "", "page URL used to resolve relative image links")
	cmd.Flags().BoolVar(&raw, "raw", false, "keep tiptap content as HTML")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func submitCmd(a *app) *cobra.Command {
	var pageURL, title, source string
	var wait time.Duration
	cmd := &cobra.Command{
		Use:   "submit --url URL",
		Short: "Start an extraction job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd.Context(), cmd.ErrOrStderr(), false, func(c *capturelib.Client) error {
				job, err := c.Submit(cmd.Context(), pageURL, title, source)
				if err != nil {
					return err
				}
				if wait > 0 && !job.Done() {
					job, err = waitFor(cmd.Context(), c, job.ID, wait)
					if err != nil {
						return err
					}
				}
				return printJob(cmd.OutOrStdout(), job)
			})
		},
	}
	cmd.Flags().StringVar(&pageURL, "url", "", "page URL to extract")
	cmd.Flags().StringVar(&title, "title", "", "job title")
	cmd.Flags().StringVar(&source, "source", capturelib.SourceStandard, "content source (tiptap or standard)")
	cmd.Flags().DurationVar(&wait, "wait", 0, "wait up to this long for the job to finish")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func jobsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "jobs",
		Short: "List extraction jobs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd.Context(), cmd.ErrOrStderr(), false, func(c *capturelib.Client) error {
				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tSTATUS\tTITLE\tSUBMITTED")
				for _, job := range c.Jobs() {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", job.ID, job.Status, job.Title, job.Timestamp.Local().Format(time.DateTime))
				}
				return w.Flush()
			})
		},
	}
}

func refreshCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh <id>",
		Short: "Check a job's status now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd.Context(), cmd.ErrOrStderr(), false, func(c *capturelib.Client) error {
				job, err := c.Refresh(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJob(cmd.OutOrStdout(), job)
			})
		},
	}
}

func clearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every extraction job",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd.Context(), cmd.ErrOrStderr(), false, func(c *capturelib.Client) error {
				if err := c.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "cleared")
				return nil
			})
		},
	}
}

func watchCmd(a *app) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "watch <id>",
		Short: "Poll a job until it finishes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd.Context(), cmd.ErrOrStderr(), true, func(c *capturelib.Client) error {
				job, err := waitFor(cmd.Context(), c, args[0], timeout)
				if err != nil {
					return err
				}
				return printJob(cmd.OutOrStdout(), job)
			})
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "give up after this long")
	return cmd
}

func chatCmd(a *app) *cobra.Command {
	var newSession bool
	cmd := &cobra.Command{
		Use:   "chat <message>",
		Short: "Send a message to the assistant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withClient(cmd.Context(), cmd.ErrOrStderr(), false, func(c *capturelib.Client) error {
				if newSession {
					c.NewChat()
				}
				reply, err := c.SendMessage(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), reply)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&newSession, "new", false, "start a new chat session first")
	return cmd
}

func waitFor(ctx context.Context, c *capturelib.Client, id string, timeout time.Duration) (*capturelib.Job, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	job, err := c.WaitForJob(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("job %s not finished: %w", id, err)
	}
	return job, nil
}

func printJob(w io.Writer, job *capturelib.Job) error {
	fmt.Fprintf(w, "%s\t%s\t%s\n", job.ID, job.Status, job.Title)
	if job.Error != "" {
		fmt.Fprintf(w, "error: %s\n", job.Error)
	}
	if job.Content != "" {
		fmt.Fprintf(w, "\n%s\n", job.Content)
	}
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
