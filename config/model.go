package config

// Stat holds one value per trainable stat.
type Stat struct {
	Spd  int `json:"spd"`
	Sta  int `json:"sta"`
	Pwr  int `json:"pwr"`
	Guts int `json:"guts"`
	Wit  int `json:"wit"`
}

// Skill controls automatic skill purchases.
type Skill struct {
	IsAutoBuySkill bool     `json:"is_auto_buy_skill"`
	SkillPtsCheck  int      `json:"skill_pts_check"`
	SkillList      []string `json:"skill_list"`
	DesireSkill    []string `json:"desire_skill"`
	MaxCost        *int     `json:"max_cost,omitempty"`
	MinDiscount    *int     `json:"min_discount,omitempty"`
}

// RaceSchedule is one race the bot should enter on a given turn.
type RaceSchedule struct {
	Name       string `json:"name"`
	Year       string `json:"year"`
	Date       string `json:"date"`
	TurnNumber int    `json:"turnNumber"`
}

// PositionForSpecificRace overrides the running position for a single race.
type PositionForSpecificRace struct {
	RaceName string `json:"race_name"`
	Year     string `json:"year"`
	Position string `json:"position"`
}

// ChoiceWeight scores event choice outcomes.
type ChoiceWeight struct {
	Spd       float64 `json:"spd"`
	Sta       float64 `json:"sta"`
	Pwr       float64 `json:"pwr"`
	Guts      float64 `json:"guts"`
	Wit       float64 `json:"wit"`
	HP        float64 `json:"hp"`
	MaxEnergy float64 `json:"max_energy"`
	SkillPts  float64 `json:"skillpts"`
	Bond      float64 `json:"bond"`
	Mood      float64 `json:"mood"`
}

// FailCondition pairs a training point threshold with a failure percentage.
type FailCondition struct {
	Point   int `json:"point"`
	Failure int `json:"failure"`
}

// Failure holds the failure chance thresholds.
type Failure struct {
	MaximumFailure          int           `json:"maximum_failure"`
	EnableCustomFailure     bool          `json:"enable_custom_failure"`
	EnableCustomLowFailure  bool          `json:"enable_custom_low_failure"`
	LowFailureCondition     FailCondition `json:"low_failure_condition"`
	EnableCustomHighFailure bool          `json:"enable_custom_high_failure"`
	HighFailureCondition    FailCondition `json:"high_failure_condition"`
}

// PositionsByRace maps race distance categories to running positions.
type PositionsByRace struct {
	Sprint string `json:"sprint"`
	Mile   string `json:"mile"`
	Medium string `json:"medium"`
	Long   string `json:"long"`
}

// SkillEventChoice forces a choice for a named event.
type SkillEventChoice struct {
	EventName string `json:"event_name"`
	Chosen    int    `json:"chosen"`
}

// Event controls event choice selection.
type Event struct {
	UseOptimalEventChoices bool               `json:"use_optimal_event_choices"`
	EventChoices           []SkillEventChoice `json:"event_choices"`
}

// SpiritStat is a stat name accepted by the Unity scenario spirit burst list.
type SpiritStat string

const (
	SpiritSpd  SpiritStat = "spd"
	SpiritSta  SpiritStat = "sta"
	SpiritPwr  SpiritStat = "pwr"
	SpiritGuts SpiritStat = "guts"
	SpiritWit  SpiritStat = "wit"
)

// SpiritStats lists every valid SpiritStat in display order.
var SpiritStats = []SpiritStat{SpiritSpd, SpiritSta, SpiritPwr, SpiritGuts, SpiritWit}

// Unity is the optional Unity Cup scenario section.
type Unity struct {
	PreferTeamRace      []int        `json:"prefer_team_race"`
	SpiritBurstPosition []SpiritStat `json:"spirit_burst_position"`
}

// Config is the full settings object consumed by the automation bot.
type Config struct {
	ConfigName                       string                    `json:"config_name"`
	Trainee                          string                    `json:"trainee"`
	Scenario                         string                    `json:"scenario"`
	PriorityStat                     []string                  `json:"priority_stat"`
	PriorityWeights                  []float64                 `json:"priority_weights"`
	SummerPriorityWeights            []float64                 `json:"summer_priority_weights"`
	HintPoint                        int                       `json:"hint_point"`
	UsePrioritizeOnJunior            bool                      `json:"use_prioritize_on_junior"`
	ChoiceWeight                     ChoiceWeight              `json:"choice_weight"`
	UsePriorityOnChoice              bool                      `json:"use_priority_on_choice"`
	SleepTimeMultiplier              float64                   `json:"sleep_time_multiplier"`
	SkipTrainingEnergy               int                       `json:"skip_training_energy"`
	SkipInfirmaryUnlessMissingEnergy int                       `json:"skip_infirmary_unless_missing_energy"`
	PriorityWeight                   string                    `json:"priority_weight"`
	NeverRestEnergy                  int                       `json:"never_rest_energy"`
	MinimumMood                      string                    `json:"minimum_mood"`
	MinimumMoodWithFriend            string                    `json:"minimum_mood_with_friend"`
	MinimumMoodJuniorYear            string                    `json:"minimum_mood_junior_year"`
	Failure                          Failure                   `json:"failure"`
	PrioritizeG1Race                 bool                      `json:"prioritize_g1_race"`
	CancelConsecutiveRace            bool                      `json:"cancel_consecutive_race"`
	PositionSelectionEnabled         bool                      `json:"position_selection_enabled"`
	EnablePositionsByRace            bool                      `json:"enable_positions_by_race"`
	PreferredPosition                string                    `json:"preferred_position"`
	PositionsByRace                  PositionsByRace           `json:"positions_by_race"`
	RaceSchedule                     []RaceSchedule            `json:"race_schedule"`
	PositionForSpecificRace          []PositionForSpecificRace `json:"position_for_specific_race"`
	EnableRaceSchedule               bool                      `json:"enable_race_schedule"`
	RunRaceOnPoorTraining            bool                      `json:"run_race_on_poor_training"`
	StatCaps                         Stat                      `json:"stat_caps"`
	Skill                            Skill                     `json:"skill"`
	WindowName                       string                    `json:"window_name"`
	Event                            Event                     `json:"event"`
	Unity                            *Unity                    `json:"unity,omitempty"`
	StopBotBeforeRace                bool                      `json:"stop_bot_before_race"`
}
