package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type documentSummary struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Category  string   `json:"category"`
	Tags      []string `json:"tags"`
	Summary   string   `json:"summary"`
	WordCount int      `json:"wordCount"`
}

type scoredDocument struct {
	documentSummary
	RelevanceScore float64 `json:"relevanceScore"`
}

type chatSource struct {
	ID             int64   `json:"id"`
	Title          string  `json:"title"`
	RelevanceScore float64 `json:"relevanceScore"`
}

type chatReply struct {
	Response  string       `json:"response"`
	Sources   []chatSource `json:"sources"`
	SessionID string       `json:"sessionId"`
}

type chatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Sources   []int64   `json:"sources"`
	CreatedAt time.Time `json:"createdAt"`
}

func newHealthCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check knowledge base server health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp healthResponse
			if err := newAPIClient(opts).getJSON(cmd.Context(), "/health", nil, &resp); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Server Status: %s\n", resp.Status)
			fmt.Fprintf(cmd.OutOrStdout(), "Server URL: %s\n", opts.serverURL)
			return nil
		},
	}
}

func newUploadCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload documents (.txt, .md, .pdf)",
		Long: `Upload one or more documents. Each file is classified on the server.

Examples:
  kbctl upload docs/microservices.md docs/hiring.pdf`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(opts)
			failed := 0
			for _, path := range args {
				var doc documentSummary
				if err := client.uploadFile(cmd.Context(), path, &doc); err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> #%d %q [%s] tags=%s\n",
					path, doc.ID, doc.Title, doc.Category, strings.Join(doc.Tags, ","))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d uploads failed", failed, len(args))
			}
			return nil
		},
	}
}

func newListCmd(opts *cliOptions) *cobra.Command {
	var category, search, tags string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List documents, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			query := url.Values{}
			setIfNotEmpty(query, "category", category)
			setIfNotEmpty(query, "search", search)
			setIfNotEmpty(query, "tags", tags)

			var resp struct {
				Documents  []documentSummary `json:"documents"`
				TotalCount int               `json:"totalCount"`
			}
			if err := newAPIClient(opts).getJSON(cmd.Context(), "/api/documents", query, &resp); err != nil {
				return err
			}
			for _, doc := range resp.Documents {
				fmt.Fprintf(cmd.OutOrStdout(), "#%d\t%s\t%s\t%d words\n", doc.ID, doc.Title, doc.Category, doc.WordCount)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d document(s)\n", resp.TotalCount)
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only this category")
	cmd.Flags().StringVar(&search, "search", "", "text contained in title, content or summary")
	cmd.Flags().StringVar(&tags, "tags", "", "comma-separated tags, any match")
	return cmd
}

func newSearchCmd(opts *cliOptions) *cobra.Command {
	var limit int
	var category, tags string
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Rank documents against a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			query.Set("q", strings.Join(args, " "))
			if limit > 0 {
				query.Set("limit", strconv.Itoa(limit))
			}
			setIfNotEmpty(query, "category", category)
			setIfNotEmpty(query, "tags", tags)

			var resp struct {
				Results []scoredDocument `json:"results"`
			}
			if err := newAPIClient(opts).getJSON(cmd.Context(), "/api/documents/search", query, &resp); err != nil {
				return err
			}
			if len(resp.Results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no documents")
				return nil
			}
			for _, result := range resp.Results {
				fmt.Fprintf(cmd.OutOrStdout(), "%6.1f  #%d %s [%s]\n", result.RelevanceScore, result.ID, result.Title, result.Category)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum results (server default when 0)")
	cmd.Flags().StringVar(&category, "category", "", "only this category")
	cmd.Flags().StringVar(&tags, "tags", "", "comma-separated tags, any match")
	return cmd
}

func newCategoriesCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp struct {
				Categories []string `json:"categories"`
			}
			if err := newAPIClient(opts).getJSON(cmd.Context(), "/api/documents/categories", nil, &resp); err != nil {
				return err
			}
			for _, category := range resp.Categories {
				fmt.Fprintln(cmd.OutOrStdout(), category)
			}
			return nil
		},
	}
}

func newSessionCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Create a chat session and print its id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp struct {
				SessionID string `json:"sessionId"`
			}
			if err := newAPIClient(opts).postJSON(cmd.Context(), "/api/chat/session", nil, &resp); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.SessionID)
			return nil
		},
	}
}

func newAskCmd(opts *cliOptions) *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Ask the coach a question",
		Long: `Send one chat message. Without --session a new session is created first
and its id is printed so the conversation can continue.

Examples:
  kbctl ask "How should I structure my first platform team?"
  kbctl ask --session 0b8f3c5e-... "And how do I hire for it?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newAPIClient(opts)
			if sessionID == "" {
				var session struct {
					SessionID string `json:"sessionId"`
				}
				if err := client.postJSON(cmd.Context(), "/api/chat/session", nil, &session); err != nil {
					return err
				}
				sessionID = session.SessionID
			}

			var reply chatReply
			payload := map[string]string{
				"message":   strings.Join(args, " "),
				"sessionId": sessionID,
			}
			if err := client.postJSON(cmd.Context(), "/api/chat/message", payload, &reply); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, reply.Response)
			if len(reply.Sources) > 0 {
				fmt.Fprintln(out, "\nSources:")
				for _, source := range reply.Sources {
					fmt.Fprintf(out, "  #%d %s (%.1f)\n", source.ID, source.Title, source.RelevanceScore)
				}
			}
			fmt.Fprintf(out, "\nsession: %s\n", reply.SessionID)
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "existing chat session id")
	return cmd
}

func newHistoryCmd(opts *cliOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "history <sessionId>",
		Short: "Print the messages of a chat session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp struct {
				Messages []chatMessage `json:"messages"`
			}
			path := "/api/chat/history/" + url.PathEscape(args[0])
			if err := newAPIClient(opts).getJSON(cmd.Context(), path, nil, &resp); err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(resp.Messages)
			}
			for _, message := range resp.Messages {
				fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s: %s\n", message.CreatedAt.Format(time.RFC3339), message.Role, message.Content)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	return cmd
}

func setIfNotEmpty(values url.Values, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		values.Set(key, value)
	}
}
