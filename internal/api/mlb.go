package api

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"time"

	"pitchmap/internal/config"
	"pitchmap/internal/domain"

	"github.com/valyala/fasthttp"
)

// MLBClient talks to the MLB Stats API. No auth is required; the endpoints
// are public.
type MLBClient struct {
	baseURL string
	client  *fasthttp.Client
}

func NewMLBClient(cfg *config.Config) *MLBClient {
	return &MLBClient{
		baseURL: cfg.StatsAPIBaseURL,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

// Players returns the regular-season player roster for one season.
func (c *MLBClient) Players(ctx context.Context, season int) ([]domain.RosterPlayer, error) {
	reqURL := fmt.Sprintf("%s/api/v1/sports/1/players?season=%d&gameType=R", c.baseURL, season)
	resp, err := doRequest[playersResponse](ctx, c, reqURL)
	if err != nil {
		return nil, err
	}

	players := make([]domain.RosterPlayer, 0, len(resp.People))
	for _, p := range resp.People {
		players = append(players, domain.RosterPlayer{
			ID:     p.ID,
			Name:   p.FullName,
			Season: season,
		})
	}
	return players, nil
}

// PitcherGameIDs returns the gamePks of every game the player pitched in
// during the season, via the pitching game-log hydration.
func (c *MLBClient) PitcherGameIDs(ctx context.Context, playerID, season int) ([]int, error) {
	hydrate := fmt.Sprintf("stats(group=[pitching],type=[gameLog],season=%d)", season)
	reqURL := fmt.Sprintf("%s/api/v1/people/%d?season=%d&hydrate=%s",
		c.baseURL, playerID, season, url.QueryEscape(hydrate))

	resp, err := doRequest[personResponse](ctx, c, reqURL)
	if err != nil {
		return nil, err
	}
	if len(resp.People) == 0 {
		return nil, fmt.Errorf("player %d not found", playerID)
	}

	var gameIDs []int
	for _, stats := range resp.People[0].Stats {
		for _, split := range stats.Splits {
			if split.Game.GamePk != 0 {
				gameIDs = append(gameIDs, split.Game.GamePk)
			}
		}
	}
	return gameIDs, nil
}

// GameFeed returns the live feed for one game, including per-pitch tracking.
func (c *MLBClient) GameFeed(ctx context.Context, gamePk int) (*GameFeed, error) {
	reqURL := fmt.Sprintf("%s/api/v1.1/game/%d/feed/live", c.baseURL, gamePk)
	return doRequest[GameFeed](ctx, c, reqURL)
}

func doRequest[T any](ctx context.Context, client *MLBClient, reqURL string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(reqURL)
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("stats API error: %d", resp.StatusCode())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type playersResponse struct {
	People []struct {
		ID       int    `json:"id"`
		FullName string `json:"fullName"`
	} `json:"people"`
}

type personResponse struct {
	People []struct {
		ID    int `json:"id"`
		Stats []struct {
			Splits []struct {
				Game struct {
					GamePk int `json:"gamePk"`
				} `json:"game"`
			} `json:"splits"`
		} `json:"stats"`
	} `json:"people"`
}

type GameFeed struct {
	GamePk   int `json:"gamePk"`
	GameData struct {
		Datetime struct {
			OfficialDate string `json:"officialDate"`
		} `json:"datetime"`
	} `json:"gameData"`
	LiveData struct {
		Plays struct {
			AllPlays []Play `json:"allPlays"`
		} `json:"plays"`
	} `json:"liveData"`
}

type Play struct {
	AtBatIndex int `json:"atBatIndex"`
	Matchup    struct {
		Pitcher struct {
			ID       int    `json:"id"`
			FullName string `json:"fullName"`
		} `json:"pitcher"`
		BatSide struct {
			Code string `json:"code"`
		} `json:"batSide"`
	} `json:"matchup"`
	PlayEvents []PlayEvent `json:"playEvents"`
}

type PlayEvent struct {
	IsPitch     bool `json:"isPitch"`
	PitchNumber int  `json:"pitchNumber"`
	Details     struct {
		Type struct {
			Code string `json:"code"`
		} `json:"type"`
	} `json:"details"`
	PitchData struct {
		StartSpeed  *float64 `json:"startSpeed"`
		Extension   *float64 `json:"extension"`
		Coordinates struct {
			PX  *float64 `json:"pX"`
			PZ  *float64 `json:"pZ"`
			VX0 *float64 `json:"vX0"`
			VY0 *float64 `json:"vY0"`
			VZ0 *float64 `json:"vZ0"`
			AX  *float64 `json:"aX"`
			AY  *float64 `json:"aY"`
			AZ  *float64 `json:"aZ"`
		} `json:"coordinates"`
		Breaks struct {
			BreakVerticalInduced *float64 `json:"breakVerticalInduced"`
			BreakHorizontal      *float64 `json:"breakHorizontal"`
		} `json:"breaks"`
	} `json:"pitchData"`
}

// PitchRecords flattens a game feed into one record per pitched ball.
// Tracking fields the feed omits come back as NaN.
func (f *GameFeed) PitchRecords() []domain.PitchRecord {
	date := f.GameData.Datetime.OfficialDate

	var out []domain.PitchRecord
	for _, play := range f.LiveData.Plays.AllPlays {
		for _, ev := range play.PlayEvents {
			if !ev.IsPitch {
				continue
			}
			out = append(out, domain.PitchRecord{
				PitcherID:   play.Matchup.Pitcher.ID,
				PitcherName: play.Matchup.Pitcher.FullName,
				PitchType:   ev.Details.Type.Code,
				GameDate:    date,
				BatterHand:  play.Matchup.BatSide.Code,
				PX:          floatOrNaN(ev.PitchData.Coordinates.PX),
				PZ:          floatOrNaN(ev.PitchData.Coordinates.PZ),
				VX0:         floatOrNaN(ev.PitchData.Coordinates.VX0),
				VY0:         floatOrNaN(ev.PitchData.Coordinates.VY0),
				VZ0:         floatOrNaN(ev.PitchData.Coordinates.VZ0),
				AX:          floatOrNaN(ev.PitchData.Coordinates.AX),
				AY:          floatOrNaN(ev.PitchData.Coordinates.AY),
				AZ:          floatOrNaN(ev.PitchData.Coordinates.AZ),
				StartSpeed:  floatOrNaN(ev.PitchData.StartSpeed),
				IVB:         floatOrNaN(ev.PitchData.Breaks.BreakVerticalInduced),
				HB:          floatOrNaN(ev.PitchData.Breaks.BreakHorizontal),
				Extension:   floatOrNaN(ev.PitchData.Extension),
			})
		}
	}
	return out
}

func floatOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
