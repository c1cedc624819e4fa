package server

import (
	"encoding/json"
	"fmt"

	"github.com/lotas/arxivgruppen/internal/types"
)

type wireTab struct {
	ID    int    `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
}

// ParsePageLoad converts a "pageLoaded" event into a PageLoad.
func ParsePageLoad(msg IncomingMsg) types.PageLoad {
	return types.PageLoad{
		TabID:    msg.TabID,
		URL:      msg.URL,
		Title:    msg.Title,
		Authors:  msg.Authors,
		Category: msg.Category,
	}
}

// ParseSnapshot converts a "snapshot" event into the open-tab list.
func ParseSnapshot(msg IncomingMsg) ([]types.OpenTab, error) {
	var tabs []wireTab
	if err := json.Unmarshal(msg.Tabs, &tabs); err != nil {
		return nil, fmt.Errorf("parse tabs: %w", err)
	}

	result := make([]types.OpenTab, 0, len(tabs))
	for _, wt := range tabs {
		result = append(result, types.OpenTab{
			TabID: wt.ID,
			URL:   wt.URL,
			Title: wt.Title,
		})
	}
	return result, nil
}
