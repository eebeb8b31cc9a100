package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"designdiff/internal/view"
	"designdiff/pkg/colorutil"
	"designdiff/pkg/geometry"
)

const figmaAPIBase = "https://api.figma.com"

// FigmaClient fetches design nodes and rendered images from the Figma REST API.
type FigmaClient struct {
	Token      string
	BaseURL    string
	HTTPClient *http.Client
}

// NewFigmaClient creates a Figma API client with the given personal access token.
func NewFigmaClient(token string) *FigmaClient {
	return &FigmaClient{
		Token:      token,
		BaseURL:    figmaAPIBase,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// figmaNode mirrors the subset of the Figma node document the view needs.
type figmaNode struct {
	ID                  string      `json:"id"`
	Name                string      `json:"name"`
	Type                string      `json:"type"`
	Characters          string      `json:"characters"`
	AbsoluteBoundingBox *figmaBox   `json:"absoluteBoundingBox"`
	Style               *figmaStyle `json:"style"`
	Fills               []figmaFill `json:"fills"`
	Children            []figmaNode `json:"children"`
}

type figmaBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type figmaStyle struct {
	FontFamily    string  `json:"fontFamily"`
	FontSize      float64 `json:"fontSize"`
	FontWeight    float64 `json:"fontWeight"`
	LineHeightPx  float64 `json:"lineHeightPx"`
	LetterSpacing float64 `json:"letterSpacing"`
}

type figmaFill struct {
	Type    string  `json:"type"`
	Visible *bool   `json:"visible"`
	Opacity float64 `json:"opacity"`
	Color   *struct {
		R float64 `json:"r"`
		G float64 `json:"g"`
		B float64 `json:"b"`
	} `json:"color"`
}

type nodesResponse struct {
	Nodes map[string]struct {
		Document figmaNode `json:"document"`
	} `json:"nodes"`
}

type imagesResponse struct {
	Err    string            `json:"err"`
	Images map[string]string `json:"images"`
}

// CaptureNode fetches one Figma node, renders it to a PNG under outDir, and
// returns the normalized view with the flattened design tree.
func (c *FigmaClient) CaptureNode(ctx context.Context, fileKey, nodeID, outDir string) (*view.NormalizedView, error) {
	root, err := c.fetchNode(ctx, fileKey, nodeID)
	if err != nil {
		return nil, err
	}
	if root.AbsoluteBoundingBox == nil || root.AbsoluteBoundingBox.Width <= 0 || root.AbsoluteBoundingBox.Height <= 0 {
		return nil, fmt.Errorf("figma: node %s has no renderable bounds", nodeID)
	}

	shotPath, err := c.renderNode(ctx, fileKey, nodeID, outDir)
	if err != nil {
		return nil, err
	}

	tree := &view.DesignSnapshot{}
	flattenFigma(root, *root.AbsoluteBoundingBox, tree)

	return &view.NormalizedView{
		Kind:           view.KindFigma,
		Source:         fmt.Sprintf("figma://%s/%s", fileKey, nodeID),
		ScreenshotPath: shotPath,
		Width:          int(root.AbsoluteBoundingBox.Width),
		Height:         int(root.AbsoluteBoundingBox.Height),
		DesignTree:     tree,
	}, nil
}

// fetchNode retrieves the document subtree for one node.
func (c *FigmaClient) fetchNode(ctx context.Context, fileKey, nodeID string) (*figmaNode, error) {
	endpoint := fmt.Sprintf("%s/v1/files/%s/nodes?ids=%s", c.BaseURL, fileKey, url.QueryEscape(nodeID))
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var resp nodesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("figma: decode nodes response: %w", err)
	}
	entry, ok := resp.Nodes[nodeID]
	if !ok {
		return nil, fmt.Errorf("figma: node %s not found in file %s", nodeID, fileKey)
	}
	return &entry.Document, nil
}

// renderNode asks Figma to rasterize the node and downloads the result.
func (c *FigmaClient) renderNode(ctx context.Context, fileKey, nodeID, outDir string) (string, error) {
	endpoint := fmt.Sprintf("%s/v1/images/%s?ids=%s&format=png&scale=1",
		c.BaseURL, fileKey, url.QueryEscape(nodeID))
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return "", err
	}

	var resp imagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("figma: decode images response: %w", err)
	}
	if resp.Err != "" {
		return "", fmt.Errorf("figma: render failed: %s", resp.Err)
	}
	imageURL, ok := resp.Images[nodeID]
	if !ok || imageURL == "" {
		return "", fmt.Errorf("figma: no rendered image for node %s", nodeID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", err
	}
	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("figma: download render: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("figma: download render: status %d", res.StatusCode)
	}

	shotPath := filepath.Join(outDir, fmt.Sprintf("figma_%d.png", time.Now().UnixNano()))
	f, err := os.Create(shotPath)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, res.Body); err != nil {
		return "", fmt.Errorf("figma: write render: %w", err)
	}
	return shotPath, nil
}

func (c *FigmaClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Figma-Token", c.Token)

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("figma: request %s: %w", endpoint, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("figma: request %s: status %d", endpoint, res.StatusCode)
	}
	return io.ReadAll(res.Body)
}

// flattenFigma walks the node tree depth-first, emitting every node with
// bounds normalized against the root frame.
func flattenFigma(node *figmaNode, root figmaBox, tree *view.DesignSnapshot) {
	if node.AbsoluteBoundingBox != nil {
		box := *node.AbsoluteBoundingBox
		out := view.DesignNode{
			ID:       node.ID,
			NodeType: node.Type,
			Name:     node.Name,
			Text:     node.Characters,
			BoundingBox: geometry.Rect{
				X:      (box.X - root.X) / root.Width,
				Y:      (box.Y - root.Y) / root.Height,
				Width:  box.Width / root.Width,
				Height: box.Height / root.Height,
			},
		}
		if node.Style != nil && node.Characters != "" {
			out.Typography = &view.TypographyStyle{
				FontFamily:    node.Style.FontFamily,
				FontSize:      node.Style.FontSize,
				FontWeight:    strconv.Itoa(int(node.Style.FontWeight)),
				LineHeight:    node.Style.LineHeightPx,
				LetterSpacing: node.Style.LetterSpacing,
			}
		}
		for _, fill := range node.Fills {
			if fill.Type != "SOLID" || fill.Color == nil {
				continue
			}
			if fill.Visible != nil && !*fill.Visible {
				continue
			}
			out.Fills = append(out.Fills, colorutil.HexString(
				uint8(fill.Color.R*255+0.5),
				uint8(fill.Color.G*255+0.5),
				uint8(fill.Color.B*255+0.5)))
		}
		tree.Nodes = append(tree.Nodes, out)
	}
	for i := range node.Children {
		flattenFigma(&node.Children[i], root, tree)
	}
}
