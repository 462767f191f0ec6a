package entity

// DBInstance is a member instance of a database cluster.
type DBInstance struct {
	Identifier string `json:"identifier"`
	Engine     string `json:"engine"`
	Class      string `json:"class"`
	Status     string `json:"status"`
}
