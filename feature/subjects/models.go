package subjects

// Subject is the part of a Subjects row the reconciler reads or writes.
type Subject struct {
	SN             int64  `gorm:"primaryKey;column:sn"`
	CompletionKey  *int64 `gorm:"column:completion_key"`
	CookieExpiresT *int64 `gorm:"column:cookie_expires_t"`
}

func (Subject) TableName() string {
	return "Subjects"
}

// MTurk tracks which HIT, assignment and worker a subject came from.
type MTurk struct {
	SN           int64   `gorm:"primaryKey;column:sn"`
	HITID        string  `gorm:"column:hitid"`
	AssignmentID *string `gorm:"column:assignmentid"`
	WorkerID     *string `gorm:"column:workerid"`
	Reconciled   bool    `gorm:"column:reconciled"`
}

func (MTurk) TableName() string {
	return "MTurk"
}

// sessionRow is the scan target of the Subjects/MTurk join.
type sessionRow struct {
	SN            int64   `gorm:"column:sn"`
	HITID         string  `gorm:"column:hitid"`
	AssignmentID  *string `gorm:"column:assignmentid"`
	WorkerID      *string `gorm:"column:workerid"`
	CompletionKey *int64  `gorm:"column:completion_key"`
	Reconciled    bool    `gorm:"column:reconciled"`
}

const sessionColumns = "Subjects.sn, MTurk.hitid, MTurk.assignmentid, MTurk.workerid, Subjects.completion_key, MTurk.reconciled"

const migration = `
CREATE TABLE IF NOT EXISTS Subjects (
	sn               INTEGER PRIMARY KEY,
	completion_key   INTEGER,
	cookie_expires_t INTEGER
);

CREATE TABLE IF NOT EXISTS MTurk (
	sn           INTEGER PRIMARY KEY REFERENCES Subjects(sn),
	hitid        TEXT NOT NULL,
	assignmentid TEXT,
	workerid     TEXT,
	reconciled   INTEGER NOT NULL DEFAULT 0
);
`
