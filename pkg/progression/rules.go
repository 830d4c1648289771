package progression

// RuleWhen selects what fires a rule. A stage rule sets Location and Stage;
// an item rule sets Item. A When with neither never fires.
type RuleWhen struct {
	Location string `json:"location,omitempty"`
	Stage    Stage  `json:"stage,omitempty"`
	Item     Item   `json:"item,omitempty"`
}

// RuleThen lists the side effects of a fired rule.
type RuleThen struct {
	// Location defaults to When.Location for stage transitions.
	Location string   `json:"location,omitempty"`
	Stage    Stage    `json:"stage,omitempty"`
	Unlock   []string `json:"unlock,omitempty"`
	Grant    []Item   `json:"grant,omitempty"`
}

// Rule is an automatic transition applied by the store.
type Rule struct {
	ID   string   `json:"id"`
	When RuleWhen `json:"when"`
	Then RuleThen `json:"then"`
}

func (w RuleWhen) matchesStage(location string, stage Stage) bool {
	return w.Location != "" && w.Stage != "" && w.Location == location && w.Stage == stage
}

func (w RuleWhen) matchesItem(item Item) bool {
	return w.Item != "" && w.Item == item
}
