package samples

// User represents a user with both JSON and TOON tags.
type User struct {
	ID   int    `json:"id" toon:"id"`
	Name string `json:"name" toon:"name"`
	Role string `json:"role" toon:"role"`
}

// Data is the top-level demo document.
type Data struct {
	Users []User `json:"users" toon:"users"`
}

// Demo returns the two-user document printed by the demo command
func Demo() Data {
	return Data{
		Users: []User{
			{ID: 1, Name: "Alice", Role: "admin"},
			{ID: 2, Name: "Bob", Role: "user"},
		},
	}
}
