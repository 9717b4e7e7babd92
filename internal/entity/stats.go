package entity

type Stats struct {
	PlayersOnline  int `json:"players_online"`
	PlayersPlaying int `json:"players_playing"`
	Rooms          int `json:"rooms"`
}
