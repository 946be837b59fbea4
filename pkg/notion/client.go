package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jomei/notionapi"

	coursedomain "studysync-backend/internal/course/domain"
	"studysync-backend/pkg/retry"
)

const oauthBaseURL = "https://api.notion.com"

// ParentPageTitle is the title of the single workspace-level page all
// course summary pages are created under.
const ParentPageTitle = "My Course Summaries"

// placeholderSummary is used when a summary has no prose text.
const placeholderSummary = "No summary available."

// Client wraps Notion OAuth and page creation. Page operations go through
// the notionapi SDK; the OAuth token exchange is plain HTTP since the SDK
// does not cover it.
type Client struct {
	clientID     string
	clientSecret string
	redirectURI  string
	oauthURL     string
	httpClient   *http.Client
	retryCfg     retry.Config
}

func NewClient(clientID, clientSecret, redirectURI string) *Client {
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		oauthURL:     oauthBaseURL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		retryCfg:     retry.DefaultConfig(),
	}
}

// WithOAuthURL overrides the OAuth endpoint. Used by tests.
func (c *Client) WithOAuthURL(u string) *Client {
	c.oauthURL = strings.TrimSuffix(u, "/")
	return c
}

// AuthURL returns the Notion consent URL.
func (c *Client) AuthURL(state string) string {
	q := url.Values{}
	q.Set("client_id", c.clientID)
	q.Set("response_type", "code")
	q.Set("owner", "user")
	q.Set("redirect_uri", c.redirectURI)
	q.Set("state", state)
	return c.oauthURL + "/v1/oauth/authorize?" + q.Encode()
}

// OAuthResult holds the workspace metadata returned by the token exchange.
type OAuthResult struct {
	AccessToken   string `json:"access_token"`
	BotID         string `json:"bot_id"`
	WorkspaceID   string `json:"workspace_id"`
	WorkspaceName string `json:"workspace_name"`
}

// ExchangeCode swaps an authorization code for a workspace token. Notion
// requires HTTP basic auth with the integration's client credentials.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*OAuthResult, error) {
	body, err := json.Marshal(map[string]string{
		"grant_type":   "authorization_code",
		"code":         code,
		"redirect_uri": c.redirectURI,
	})
	if err != nil {
		return nil, fmt.Errorf("notion: failed to marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.oauthURL+"/v1/oauth/token", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("notion: failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.clientID, c.clientSecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("notion: token request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("notion: failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("notion: token exchange failed: status %d: %s", resp.StatusCode, string(respBody))
	}

	var result OAuthResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("notion: failed to decode token response: %w", err)
	}
	return &result, nil
}

func (c *Client) api(token string) *notionapi.Client {
	return notionapi.NewClient(notionapi.Token(token))
}

// CreateParentPage creates the workspace-level parent page and returns its id.
func (c *Client) CreateParentPage(ctx context.Context, token string) (string, error) {
	var pageID string
	err := retry.WithBackoff(ctx, c.retryCfg, func(ctx context.Context) error {
		page, err := c.api(token).Page.Create(ctx, &notionapi.PageCreateRequest{
			Parent: notionapi.Parent{
				Type:      notionapi.ParentTypeWorkspace,
				Workspace: true,
			},
			Properties: notionapi.Properties{
				"title": notionapi.TitleProperty{
					Title: richText(ParentPageTitle),
				},
			},
		})
		if err != nil {
			return fmt.Errorf("notion: create parent page: %w", err)
		}
		pageID = string(page.ID)
		return nil
	})
	if err != nil {
		return "", err
	}
	return pageID, nil
}

// CreateSummaryPage creates one child page under the parent for a summary
// and returns the created page id. Page title falls back to the course
// name, then "Untitled".
func (c *Client) CreateSummaryPage(ctx context.Context, token, parentPageID, courseName string, summary *coursedomain.Summary) (string, error) {
	title := summary.Title
	if title == "" {
		title = courseName
	}
	if title == "" {
		title = "Untitled"
	}

	blocks := BuildPageBlocks(summary)

	var pageID string
	err := retry.WithBackoff(ctx, c.retryCfg, func(ctx context.Context) error {
		page, err := c.api(token).Page.Create(ctx, &notionapi.PageCreateRequest{
			Parent: notionapi.Parent{
				Type:   notionapi.ParentTypePageID,
				PageID: notionapi.PageID(parentPageID),
			},
			Properties: notionapi.Properties{
				"title": notionapi.TitleProperty{
					Title: richText(title),
				},
			},
			Children: blocks,
		})
		if err != nil {
			return fmt.Errorf("notion: create summary page: %w", err)
		}
		pageID = string(page.ID)
		return nil
	})
	if err != nil {
		return "", err
	}
	return pageID, nil
}

// BuildPageBlocks renders a summary into the fixed child-page block
// sequence: Summary, Roadmap, Key Points, Model Questions, Action Plan.
func BuildPageBlocks(summary *coursedomain.Summary) []notionapi.Block {
	summaryText := summary.SummaryText
	if summaryText == "" {
		summaryText = placeholderSummary
	}

	blocks := []notionapi.Block{
		heading("Summary"),
		&notionapi.ParagraphBlock{
			BasicBlock: basicBlock(notionapi.BlockTypeParagraph),
			Paragraph:  notionapi.Paragraph{RichText: richText(summaryText)},
		},
		heading("Roadmap"),
	}

	for _, entry := range summary.Roadmap {
		text := fmt.Sprintf("Week %d: %s - %s", entry.Week, entry.Focus, entry.Description)
		blocks = append(blocks, bullet(text))
	}

	blocks = append(blocks, heading("Key Points"))
	for _, point := range summary.KeyPoints {
		blocks = append(blocks, bullet(point))
	}

	blocks = append(blocks, heading("Model Questions"))
	for _, q := range summary.ModelQuestions {
		kind := string(q.Type)
		if kind == "" {
			kind = "short"
		}
		blocks = append(blocks, bullet(fmt.Sprintf("%s → %s", strings.ToUpper(kind), q.Question)))
	}

	blocks = append(blocks, heading("Action Plan"))
	for _, item := range summary.ActionPlan {
		blocks = append(blocks, &notionapi.ToDoBlock{
			BasicBlock: basicBlock(notionapi.BlockTypeToDo),
			ToDo: notionapi.ToDo{
				RichText: richText(fmt.Sprintf("%s (Priority: %s)", item.Task, item.Priority)),
				Checked:  false,
			},
		})
	}

	return blocks
}

func basicBlock(t notionapi.BlockType) notionapi.BasicBlock {
	return notionapi.BasicBlock{
		Object: notionapi.ObjectTypeBlock,
		Type:   t,
	}
}

func heading(text string) notionapi.Block {
	return &notionapi.Heading2Block{
		BasicBlock: basicBlock(notionapi.BlockTypeHeading2),
		Heading2:   notionapi.Heading{RichText: richText(text)},
	}
}

func bullet(text string) notionapi.Block {
	return &notionapi.BulletedListItemBlock{
		BasicBlock:       basicBlock(notionapi.BlockTypeBulletedListItem),
		BulletedListItem: notionapi.ListItem{RichText: richText(text)},
	}
}

func richText(content string) []notionapi.RichText {
	return []notionapi.RichText{
		{
			Type: notionapi.ObjectTypeText,
			Text: &notionapi.Text{Content: content},
		},
	}
}
