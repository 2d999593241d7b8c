package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/libertyplace/rentapp/internal"
	"github.com/libertyplace/rentapp/internal/apperrors"
	"github.com/libertyplace/rentapp/internal/metrics"
	"resty.dev/v3"
)

// BoardColumns maps logical fields to the column ids of the project board.
type BoardColumns struct {
	PropertyName  string
	UnitType      string
	Status        string
	ApplicantID   string
	SubitemStatus string
	ApplicantType string
}

type BoardOptions struct {
	APIURL           string
	Token            string
	UnitsBoardID     string
	DocumentsBoardID string
	VacantLabel      string
	MissingLabel     string
	Columns          BoardColumns
}

type Unit struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	PropertyName string `json:"propertyName"`
	UnitType     string `json:"unitType"`
	Status       string `json:"status"`
}

type MissingSubitem struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Status         string `json:"status"`
	ParentItemID   string `json:"parentItemId"`
	ParentItemName string `json:"parentItemName"`
	ApplicantType  string `json:"applicantType"`
}

// UnitCache stores the last vacant unit listing. Implementations must be
// safe for concurrent use.
type UnitCache interface {
	GetUnits(ctx context.Context) ([]Unit, bool, error)
	SetUnits(ctx context.Context, units []Unit) error
}

type BoardClient struct {
	http  *resty.Client
	opts  BoardOptions
	cache UnitCache
	log   *internal.Logger
}

// NewBoardClient requires a token; cache may be nil.
func NewBoardClient(http *resty.Client, opts BoardOptions, cache UnitCache, log *internal.Logger) (*BoardClient, error) {
	if strings.TrimSpace(opts.Token) == "" {
		return nil, apperrors.NewConfigError("board API token is not configured")
	}
	if opts.APIURL == "" {
		return nil, apperrors.NewConfigError("board API URL is not configured")
	}
	if opts.VacantLabel == "" {
		opts.VacantLabel = "Vacant"
	}
	if opts.MissingLabel == "" {
		opts.MissingLabel = "Missing"
	}
	return &BoardClient{http: http, opts: opts, cache: cache, log: internal.OrDefault(log)}, nil
}

type columnValue struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Label string `json:"label"`
}

type boardItem struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	ColumnValues []columnValue `json:"column_values"`
	Subitems     []boardItem   `json:"subitems"`
}

func (i boardItem) column(id string) (columnValue, bool) {
	for _, cv := range i.ColumnValues {
		if cv.ID == id {
			return cv, true
		}
	}
	return columnValue{}, false
}

func (i boardItem) text(id string) string {
	cv, _ := i.column(id)
	return cv.Text
}

type boardsData struct {
	Boards []struct {
		ItemsPage struct {
			Items []boardItem `json:"items"`
		} `json:"items_page"`
	} `json:"boards"`
}

func (d boardsData) items() []boardItem {
	if len(d.Boards) == 0 {
		return nil
	}
	return d.Boards[0].ItemsPage.Items
}

type graphQLResponse struct {
	Data   boardsData `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// query runs one GraphQL query against the board API.
func (b *BoardClient) query(ctx context.Context, name, q string) (data boardsData, err error) {
	defer func() {
		metrics.BoardQueries.WithLabelValues(name, metrics.Outcome(err)).Inc()
	}()

	payload, err := json.Marshal(map[string]string{"query": q})
	if err != nil {
		return boardsData{}, apperrors.NewBoardQueryError(err)
	}

	resp, err := postJSON(ctx, b.http, b.opts.APIURL, payload, map[string]string{"Authorization": b.opts.Token})
	if err != nil {
		return boardsData{}, apperrors.NewBoardQueryError(err)
	}
	if !resp.ok() {
		if known, reason := statusReason(resp.status); known {
			b.log.Warn("Board API %s: %s", name, reason)
		}
		return boardsData{}, apperrors.NewBoardQueryError(fmt.Errorf("board API error: %d - %s", resp.status, string(resp.body)))
	}

	var out graphQLResponse
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return boardsData{}, apperrors.NewBoardQueryError(fmt.Errorf("failed to decode board response: %w", err))
	}
	if len(out.Errors) > 0 {
		msgs := make([]string, len(out.Errors))
		for i, e := range out.Errors {
			msgs[i] = e.Message
		}
		return boardsData{}, apperrors.NewBoardQueryError(errors.New(strings.Join(msgs, "; ")))
	}
	return out.Data, nil
}

func (b *BoardClient) unitsQuery() string {
	c := b.opts.Columns
	return fmt.Sprintf(`query {
  boards(ids: [%s]) {
    items_page(query_params: {rules: [{column_id: %s, compare_value: %s, operator: contains_terms}]}) {
      items {
        id
        name
        column_values(ids: [%s, %s, %s]) {
          id
          text
        }
      }
    }
  }
}`, b.opts.UnitsBoardID, strconv.Quote(c.Status), strconv.Quote(b.opts.VacantLabel),
		strconv.Quote(c.PropertyName), strconv.Quote(c.UnitType), strconv.Quote(c.Status))
}

func (b *BoardClient) documentsQuery() string {
	c := b.opts.Columns
	return fmt.Sprintf(`query {
  boards(ids: [%s]) {
    items_page {
      items {
        id
        name
        column_values(ids: [%s]) {
          id
          text
        }
        subitems {
          id
          name
          column_values(ids: [%s, %s]) {
            id
            text
            ... on StatusValue {
              label
            }
          }
        }
      }
    }
  }
}`, b.opts.DocumentsBoardID, strconv.Quote(c.ApplicantID), strconv.Quote(c.SubitemStatus), strconv.Quote(c.ApplicantType))
}

// FetchVacantUnits lists units whose status column contains the vacant
// label. A configured cache is consulted first and refreshed on a miss.
func (b *BoardClient) FetchVacantUnits(ctx context.Context) ([]Unit, error) {
	if err := validBoardID(b.opts.UnitsBoardID); err != nil {
		return nil, err
	}

	if b.cache != nil {
		units, ok, err := b.cache.GetUnits(ctx)
		switch {
		case err != nil:
			b.log.Warn("Unit cache read failed, querying board: %v", err)
			metrics.BoardCacheLookups.WithLabelValues("error").Inc()
		case ok:
			metrics.BoardCacheLookups.WithLabelValues("hit").Inc()
			return units, nil
		default:
			metrics.BoardCacheLookups.WithLabelValues("miss").Inc()
		}
	}

	data, err := b.query(ctx, "vacant_units", b.unitsQuery())
	if err != nil {
		return nil, fmt.Errorf("fetch vacant units: %w", err)
	}

	c := b.opts.Columns
	units := make([]Unit, 0, len(data.items()))
	for _, item := range data.items() {
		units = append(units, Unit{
			ID:           item.ID,
			Name:         item.Name,
			PropertyName: item.text(c.PropertyName),
			UnitType:     item.text(c.UnitType),
			Status:       item.text(c.Status),
		})
	}
	b.log.Debug("Fetched %d vacant units from board %s", len(units), b.opts.UnitsBoardID)

	if b.cache != nil {
		if err := b.cache.SetUnits(ctx, units); err != nil {
			b.log.Warn("Unit cache write failed: %v", err)
		}
	}
	return units, nil
}

// FetchMissingSubitems returns the document subitems still marked missing
// for every parent item whose applicant id column equals applicantID.
func (b *BoardClient) FetchMissingSubitems(ctx context.Context, applicantID string) ([]MissingSubitem, error) {
	applicantID = strings.TrimSpace(applicantID)
	if applicantID == "" {
		return nil, apperrors.NewValidationError("Applicant ID is required")
	}
	if err := validBoardID(b.opts.DocumentsBoardID); err != nil {
		return nil, err
	}

	data, err := b.query(ctx, "missing_subitems", b.documentsQuery())
	if err != nil {
		return nil, fmt.Errorf("fetch missing subitems: %w", err)
	}

	c := b.opts.Columns
	results := []MissingSubitem{}
	for _, item := range data.items() {
		if item.text(c.ApplicantID) != applicantID {
			continue
		}
		for _, sub := range item.Subitems {
			status := ""
			if cv, ok := sub.column(c.SubitemStatus); ok {
				status = cv.Label
				if status == "" {
					status = cv.Text
				}
			}
			if status != b.opts.MissingLabel {
				continue
			}
			applicantType := sub.text(c.ApplicantType)
			if applicantType == "" {
				applicantType = "Unknown"
			}
			results = append(results, MissingSubitem{
				ID:             sub.ID,
				Name:           sub.Name,
				Status:         status,
				ParentItemID:   item.ID,
				ParentItemName: item.Name,
				ApplicantType:  applicantType,
			})
		}
	}
	b.log.Debug("Found %d missing subitems for applicant %s", len(results), applicantID)
	return results, nil
}

// UniqueBuildings lists the distinct non-empty property names in the order
// they first appear.
func UniqueBuildings(units []Unit) []string {
	seen := make(map[string]struct{}, len(units))
	out := []string{}
	for _, u := range units {
		if u.PropertyName == "" {
			continue
		}
		if _, ok := seen[u.PropertyName]; ok {
			continue
		}
		seen[u.PropertyName] = struct{}{}
		out = append(out, u.PropertyName)
	}
	return out
}

func UnitsByBuilding(units []Unit, building string) []Unit {
	out := []Unit{}
	for _, u := range units {
		if u.PropertyName == building {
			out = append(out, u)
		}
	}
	return out
}

// validBoardID rejects ids that would break out of the query literal.
func validBoardID(id string) error {
	if id == "" {
		return apperrors.NewConfigError("board id is not configured")
	}
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return apperrors.NewConfigError(fmt.Sprintf("board id %q is not numeric", id))
	}
	return nil
}
