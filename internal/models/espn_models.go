package models

type LeagueResponse struct {
	ID              int            `json:"id"`
	ScoringPeriodID int            `json:"scoringPeriodId"`
	SeasonID        int            `json:"seasonId"`
	SegmentID       int            `json:"segmentId"`
	Status          Status         `json:"status"`
	Teams           []Team         `json:"teams"`
	Settings        Settings       `json:"settings"`
	Schedule        []MatchupScore `json:"schedule"`
}

type Settings struct {
	Name             string           `json:"name"`
	Size             int              `json:"size"`
	ScheduleSettings ScheduleSettings `json:"scheduleSettings"`
}

type ScheduleSettings struct {
	MatchupPeriodCount int `json:"matchupPeriodCount"`
	// MatchupPeriods maps a matchup period id to its scoring period ids.
	MatchupPeriods map[string][]int `json:"matchupPeriods"`
}

type Status struct {
	CurrentMatchupPeriod int  `json:"currentMatchupPeriod"`
	FinalScoringPeriod   int  `json:"finalScoringPeriod"`
	FirstScoringPeriod   int  `json:"firstScoringPeriod"`
	LatestScoringPeriod  int  `json:"latestScoringPeriod"`
	IsActive             bool `json:"isActive"`
}

type Team struct {
	ID           int     `json:"id"`
	Abbreviation string  `json:"abbrev"`
	Name         string  `json:"name"`
	Location     string  `json:"location"`
	Nickname     string  `json:"nickname"`
	Logo         string  `json:"logo"`
	PlayoffSeed  int     `json:"playoffSeed"`
	Points       float64 `json:"points"`
	Roster       Roster  `json:"roster"`
	Record       Record  `json:"record"`
}

// DisplayName falls back to location and nickname for older seasons.
func (t Team) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	if t.Location != "" || t.Nickname != "" {
		return t.Location + " " + t.Nickname
	}
	return t.Abbreviation
}

type Roster struct {
	Entries []RosterEntry `json:"entries"`
}

type Record struct {
	Overall RecordDetails `json:"overall"`
}

type RecordDetails struct {
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Ties          int     `json:"ties"`
	Percentage    float64 `json:"percentage"`
	PointsFor     float64 `json:"pointsFor"`
	PointsAgainst float64 `json:"pointsAgainst"`
}

type ScoreboardResponse struct {
	Schedule []MatchupScore `json:"schedule"`
}

type MatchupScore struct {
	ID              int       `json:"id"`
	MatchupPeriodID int       `json:"matchupPeriodId"`
	Away            TeamScore `json:"away"`
	Home            TeamScore `json:"home"`
	Winner          string    `json:"winner"`
}

type TeamScore struct {
	TeamID                        int             `json:"teamId"`
	TotalPoints                   float64         `json:"totalPoints"`
	CumulativeScore               CumulativeScore `json:"cumulativeScore"`
	RosterForCurrentScoringPeriod RosterForPeriod `json:"rosterForCurrentScoringPeriod"`
	RosterForMatchupPeriod        RosterForPeriod `json:"rosterForMatchupPeriod"`
}

type CumulativeScore struct {
	Wins        int                  `json:"wins"`
	Losses      int                  `json:"losses"`
	Ties        int                  `json:"ties"`
	ScoreByStat map[string]StatScore `json:"scoreByStat"`
}

type StatScore struct {
	Score  float64 `json:"score"`
	Result string  `json:"result"`
}

type RosterForPeriod struct {
	Entries []RosterEntry `json:"entries"`
}

type RosterEntry struct {
	PlayerID        int             `json:"playerId"`
	PlayerPoolEntry PlayerPoolEntry `json:"playerPoolEntry"`
	LineupSlotID    int             `json:"lineupSlotId"`
}

type PlayerPoolEntry struct {
	ID               int        `json:"id"`
	OnTeamID         int        `json:"onTeamId"`
	Player           PlayerInfo `json:"player"`
	AppliedStatTotal float64    `json:"appliedStatTotal"`
}

type PlayerInfo struct {
	ID                int       `json:"id"`
	FullName          string    `json:"fullName"`
	DefaultPositionID int       `json:"defaultPositionId"`
	ProTeamID         int       `json:"proTeamId"`
	Ownership         Ownership `json:"ownership"`
	Stats             []Stat    `json:"stats"`
	InjuryStatus      string    `json:"injuryStatus"`
	Injured           bool      `json:"injured"`
}

type Ownership struct {
	PercentOwned float64 `json:"percentOwned"`
}

type Stat struct {
	ID              string             `json:"id"`
	SeasonID        int                `json:"seasonId"`
	StatSourceID    int                `json:"statSourceId"`
	StatSplitTypeID int                `json:"statSplitTypeId"`
	ScoringPeriodID int                `json:"scoringPeriodId"`
	AppliedTotal    float64            `json:"appliedTotal"`
	Stats           map[string]float64 `json:"stats"`
	AverageStats    map[string]float64 `json:"averageStats"`
}

type ProScheduleResponse struct {
	Settings struct {
		ProTeams []ProTeam `json:"proTeams"`
	} `json:"settings"`
}

type ProTeam struct {
	ID                      int                  `json:"id"`
	Abbrev                  string               `json:"abbrev"`
	Name                    string               `json:"name"`
	Location                string               `json:"location"`
	ProGamesByScoringPeriod map[string][]ProGame `json:"proGamesByScoringPeriod"`
}

type ProGame struct {
	ID            int   `json:"id"`
	Date          int64 `json:"date"`
	HomeProTeamID int   `json:"homeProTeamId"`
	AwayProTeamID int   `json:"awayProTeamId"`
}
