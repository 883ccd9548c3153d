package migration

import "time"

// LegacyUser is a row of the old bot's users table.
type LegacyUser struct {
	UserID            string
	UserName          string
	RequestsCompleted int64
	CreatedAt         time.Time
}

// LegacyRequest is a row of the old bot's crafting_requests table.
type LegacyRequest struct {
	RequestID     int64
	RequestorID   string
	UserName      string
	ItemName      string
	HasMaterials  bool
	Amount        int
	TradeSkill    string
	LevelRequired *int
	Status        string
	AcceptedBy    *string
	CreatedAt     time.Time
	CompletedOn   *time.Time
}

// LegacySkill is a row of the old bot's trade_skills table.
type LegacySkill struct {
	SkillID    int64
	UserID     string
	UserName   string
	SkillName  string
	SkillLevel int
	CreatedAt  time.Time
}

// MigrationStats tracks migration progress and issues
type MigrationStats struct {
	Tables         map[string]*TableStats `json:"tables"`
	StartTime      time.Time              `json:"start_time"`
	EndTime        time.Time              `json:"end_time"`
	TotalSkipped   int                    `json:"total_skipped"`
	TotalProcessed int                    `json:"total_processed"`
}

// TableStats tracks stats for individual tables
type TableStats struct {
	TableName      string          `json:"table_name"`
	Processed      int             `json:"processed"`
	Successful     int             `json:"successful"`
	Skipped        int             `json:"skipped"`
	SkippedRecords []SkippedRecord `json:"skipped_records"`
}

// SkippedRecord tracks why a record was skipped
type SkippedRecord struct {
	Reason string `json:"reason"`
	ID     string `json:"id"`
}

func (s *MigrationStats) table(name string) *TableStats {
	t, ok := s.Tables[name]
	if !ok {
		t = &TableStats{TableName: name}
		s.Tables[name] = t
	}
	return t
}

func (t *TableStats) skip(id, reason string) {
	t.Skipped++
	t.SkippedRecords = append(t.SkippedRecords, SkippedRecord{ID: id, Reason: reason})
}
