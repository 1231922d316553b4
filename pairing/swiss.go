package pairing

type SwissGenerator struct{}

func NewSwissGenerator() Generator {
	return &SwissGenerator{}
}

func (g *SwissGenerator) Name() string {
	return "Swiss"
}

// Generate produces round 1 only. Players are seeded alphabetically and paired
// (1,2), (3,4), ...; the earlier seed has white in every other pairing. With an
// odd roster the last seed sits out. Later rounds depend on results.
func (g *SwissGenerator) Generate(params GenerateParams) (Schedule, error) {
	if len(params.Players) < 2 {
		return nil, ErrInsufficientPlayers
	}
	seeded := sortedByName(params.Players)

	round := Round{Number: 1, Pairings: make([]Pairing, 0, len(seeded)/2)}
	for i := 0; i+1 < len(seeded); i += 2 {
		white, black := seeded[i], seeded[i+1]
		if i%4 != 0 {
			white, black = black, white
		}
		round.Pairings = append(round.Pairings, newPairing(1, white, black))
	}
	return Schedule{round}, nil
}
