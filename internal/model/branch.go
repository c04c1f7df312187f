package model

// Branch is one row of the published branch directory. All fields are
// stored as text exactly as they appear in the source spreadsheet.
type Branch struct {
	Bank    string `json:"BANK"`
	IFSC    string `json:"IFSC"`
	Branch  string `json:"BRANCH"`
	Address string `json:"ADDRESS"`
	City1   string `json:"CITY1"`
	City2   string `json:"CITY2"`
	State   string `json:"STATE"`
	STDCode string `json:"STD_CODE"`
	Phone   string `json:"PHONE"`
}

// BranchFromRow builds a Branch from a header-keyed spreadsheet row.
// Missing columns become empty strings, never nulls. The source sheet
// titles the dialing code column "STD CODE"; it is stored as STD_CODE.
func BranchFromRow(row map[string]string) Branch {
	return Branch{
		Bank:    row["BANK"],
		IFSC:    row["IFSC"],
		Branch:  row["BRANCH"],
		Address: row["ADDRESS"],
		City1:   row["CITY1"],
		City2:   row["CITY2"],
		State:   row["STATE"],
		STDCode: row["STD CODE"],
		Phone:   row["PHONE"],
	}
}

// Fields returns the document field map persisted to the store.
func (b Branch) Fields() map[string]string {
	return map[string]string{
		"BANK":     b.Bank,
		"IFSC":     b.IFSC,
		"BRANCH":   b.Branch,
		"ADDRESS":  b.Address,
		"CITY1":    b.City1,
		"CITY2":    b.City2,
		"STATE":    b.State,
		"STD_CODE": b.STDCode,
		"PHONE":    b.Phone,
	}
}
