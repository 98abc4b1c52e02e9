package game

type State struct {
	Version     int              `json:"version"`
	Now         Calendar         `json:"now"`
	Time        TimeState        `json:"time"`
	Resources   Resources        `json:"resources"`
	Active      Active           `json:"active"`
	Team        Team             `json:"team"`
	Research    ResearchState    `json:"research"`
	History     History          `json:"history"`
	Knowledge   Knowledge        `json:"knowledge"`
	StageQueue  []StageRequest   `json:"stageQueue"`
	RatingQueue []DeliveryRating `json:"ratingQueue"`
	Inbox       InboxState       `json:"inbox"`
	Market      Market           `json:"market"`
	World       World            `json:"world"`
	Flags       Flags            `json:"flags"`
	Log         []LogEntry       `json:"log"`

	SelectedTarget string `json:"selectedTarget,omitempty"`

	Negotiation *Negotiation `json:"-"`
}

type Calendar struct {
	Year    int    `json:"year"`
	Week    int    `json:"week"`
	Day     int    `json:"day"`
	DayNum  int    `json:"dayNum"`
	DateISO string `json:"dateISO"`
}

type TimeState struct {
	ElapsedHours float64 `json:"elapsedHours"`
	Paused       bool    `json:"paused"`
	Speed        float64 `json:"speed"`
}

type Active struct {
	Projects []*Project `json:"projects"`
	Products []*Product `json:"products"`
}

type Team struct {
	Members    []*TeamMember `json:"members"`
	Candidates []*TeamMember `json:"candidates"`
}

type ResearchState struct {
	Unlocked []string       `json:"unlocked"`
	Engines  map[string]int `json:"engines"`
	Task     *ResearchTask  `json:"task"`
}

type History struct {
	ProjectsDone []ProjectRecord `json:"projectsDone"`
}

type Knowledge struct {
	KnownArchetypes        []string `json:"zenaKnownArchetypes"`
	PostmortemedProductIDs []string `json:"postmortemedProductIds"`
}

type InboxState struct {
	Items []InboxItem `json:"items"`
}

type Market struct {
	Leads []Lead `json:"leads"`
}

type World struct {
	EventPityWeeks int `json:"eventPityWeeks"`
}

type Flags struct {
	GameOver string `json:"gameOver,omitempty"`
	Crises   int    `json:"crises"`
}

type LogEntry struct {
	ID   string `json:"id"`
	At   string `json:"at"`
	Tone string `json:"tone"`
	Text string `json:"text"`
}

type Project struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Archetype string `json:"archetype"`
	Narrative string `json:"narrative"`
	Chain     string `json:"chain"`
	Audience  string `json:"audience"`
	Scale     int    `json:"scale"`

	Started       bool                          `json:"started"`
	StageIndex    int                           `json:"stageIndex"`
	StageProgress float64                       `json:"stageProgress"`
	StagePaused   bool                          `json:"stagePaused"`
	StagePrefs    map[string]map[string]float64 `json:"stagePrefs"`
	StageTeam     map[string]map[string]string  `json:"stageTeam"`

	Budget    float64   `json:"budget"`
	CostSpent float64   `json:"costSpent"`
	Contract  *Contract `json:"contract,omitempty"`
	CreatedAt int       `json:"createdDay"`
}

type Contract struct {
	Client       string  `json:"client"`
	Fee          float64 `json:"fee"`
	DepositPct   float64 `json:"depositPct"`
	DeadlineWeek int     `json:"deadlineWeek"`
	Scope        int     `json:"scope"`
}

type ProjectRecord struct {
	ID           string                        `json:"id"`
	ProductID    string                        `json:"productId"`
	Title        string                        `json:"title"`
	Archetype    string                        `json:"archetype"`
	Narrative    string                        `json:"narrative"`
	Chain        string                        `json:"chain"`
	Audience     string                        `json:"audience"`
	Scale        int                           `json:"scale"`
	Scores       Scores                        `json:"scores"`
	CostSpent    float64                       `json:"costSpent"`
	StagePrefs   map[string]map[string]float64 `json:"stagePrefs"`
	Client       string                        `json:"client,omitempty"`
	CompletedDay int                           `json:"completedDay"`
	DateISO      string                        `json:"dateISO"`
}

type Scores struct {
	Match    float64 `json:"match"`
	Quality  float64 `json:"quality"`
	Product  float64 `json:"product"`
	Tech     float64 `json:"tech"`
	Security float64 `json:"security"`
	Growth   float64 `json:"growth"`
}

type Product struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Title     string `json:"title"`
	Archetype string `json:"archetype"`
	Narrative string `json:"narrative"`
	Chain     string `json:"chain"`
	Audience  string `json:"audience"`
	Scale     int    `json:"scale"`

	Ops       Ops           `json:"ops"`
	KPI       KPI           `json:"kpi"`
	History   []KPISnapshot `json:"history"`
	Scores    Scores        `json:"scores"`
	LaunchDAU float64       `json:"launchDau"`
	Launched  int           `json:"launchedDay"`
}

type Ops struct {
	FeeRateBps float64 `json:"feeRateBps"`
	BuybackPct float64 `json:"buybackPct"`
	Emissions  float64 `json:"emissions"`
	Budgets    Budgets `json:"budgets"`
}

// Budgets are weekly amounts, charged per day as budget/7.
type Budgets struct {
	Incentives float64 `json:"incentives"`
	Marketing  float64 `json:"marketing"`
	Security   float64 `json:"security"`
	Infra      float64 `json:"infra"`
	Compliance float64 `json:"compliance"`
	Support    float64 `json:"support"`
	Referral   float64 `json:"referral"`
}

// KPI is a product's latest daily reading. Profit and MarginPct are signed
// and go negative for a losing product; the other fields never drop below 0.
type KPI struct {
	TokenPrice  float64 `json:"tokenPrice"`
	DAU         float64 `json:"dau"`
	TVL         float64 `json:"tvl"`
	Revenue     float64 `json:"revenue"`
	RevenueFee  float64 `json:"revenueFee"`
	RevenueBase float64 `json:"revenueBase"`
	Profit      float64 `json:"profit"`
	MarginPct   float64 `json:"marginPct"`
	Costs       Costs   `json:"costs"`
}

type Costs struct {
	Infra      float64 `json:"infra"`
	Security   float64 `json:"security"`
	Compliance float64 `json:"compliance"`
	Support    float64 `json:"support"`
	Marketing  float64 `json:"marketing"`
	Incentives float64 `json:"incentives"`
	Buyback    float64 `json:"buyback"`
	Referral   float64 `json:"referral"`
}

func (c Costs) Total() float64 {
	return c.Infra + c.Security + c.Compliance + c.Support + c.Marketing + c.Incentives + c.Buyback + c.Referral
}

type KPISnapshot struct {
	Day        int     `json:"day"`
	TokenPrice float64 `json:"tokenPrice"`
	DAU        float64 `json:"dau"`
	TVL        float64 `json:"tvl"`
	Revenue    float64 `json:"revenue"`
	Profit     float64 `json:"profit"`
}

type TeamMember struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Skills       Skills  `json:"skills"`
	SalaryWeekly float64 `json:"salaryWeekly"`
	Perk         string  `json:"perk,omitempty"`
	PerkUsed     bool    `json:"perkUsed,omitempty"`
}

type Skills struct {
	Product    float64 `json:"product"`
	Design     float64 `json:"design"`
	Protocol   float64 `json:"protocol"`
	Contract   float64 `json:"contract"`
	Infra      float64 `json:"infra"`
	Security   float64 `json:"security"`
	Growth     float64 `json:"growth"`
	Compliance float64 `json:"compliance"`
}

type ResearchTask struct {
	Kind       string  `json:"kind"`
	NodeID     string  `json:"nodeId"`
	EngineKey  string  `json:"engineKey,omitempty"`
	TargetID   string  `json:"targetId,omitempty"`
	HoursTotal float64 `json:"hoursTotal"`
	HoursDone  float64 `json:"hoursDone"`
	AssigneeID string  `json:"assigneeId,omitempty"`
}

type StageRequest struct {
	ProjectID string `json:"projectId"`
	Stage     int    `json:"stage"`
}

type DeliveryRating struct {
	ProjectID   string `json:"projectId"`
	Title       string `json:"title"`
	Institution string `json:"institution"`
	Score       int    `json:"score"`
}

type InboxItem struct {
	ID             string             `json:"id"`
	DefKey         string             `json:"defKey"`
	Created        WeekStamp          `json:"created"`
	ExpiresInWeeks int                `json:"expiresInWeeks"`
	Payload        map[string]float64 `json:"payload,omitempty"`
}

type WeekStamp struct {
	Year int `json:"year"`
	Week int `json:"week"`
}

type Lead struct {
	ID            string  `json:"id"`
	Client        string  `json:"client"`
	Archetype     string  `json:"archetype"`
	Narrative     string  `json:"narrative"`
	Chain         string  `json:"chain"`
	Audience      string  `json:"audience"`
	Fee           float64 `json:"fee"`
	DeadlineWeeks int     `json:"deadlineWeeks"`
	Scope         int     `json:"scope"`
	Cooperation   int     `json:"cooperation"`
	Attention     int     `json:"attention"`
}
