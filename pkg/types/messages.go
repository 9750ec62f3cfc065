package types

import "github.com/Alexrp02/pokemon-team-overlay/internal/roster"

// Server -> Client, over /ws. One message on connect with the current
// teams, then one more after every change:
//
//	{
//	  "<team id>": {
//	    "pokemon": [
//	      { "name": "pikachu",   "nickname": null },
//	      { "name": "charizard", "nickname": "Sparky" },
//	      { "name": "",          "nickname": null },
//	      ...                                   // always 6 entries
//	    ]
//	  },
//	  ...
//	}
//
// The team id is the file name without its last extension
// ("team.txt" -> "team"). Empty names are vacant slots.
// Nothing is read from the client.

type Pokemon struct {
	Name     string  `json:"name"`
	Nickname *string `json:"nickname"`
}

type Team struct {
	Pokemon []Pokemon `json:"pokemon"`
}

type TeamSet map[string]Team

func FromRoster(r roster.Roster) Team {
	t := Team{Pokemon: make([]Pokemon, 0, roster.Size)}
	for _, e := range r {
		t.Pokemon = append(t.Pokemon, Pokemon{Name: e.Name, Nickname: e.Nickname})
	}
	return t
}

func FromSet(s roster.Set) TeamSet {
	out := make(TeamSet, len(s))
	for id, r := range s {
		out[id] = FromRoster(r)
	}
	return out
}
