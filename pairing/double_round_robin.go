package pairing

type DoubleRoundRobinGenerator struct{}

func NewDoubleRoundRobinGenerator() Generator {
	return &DoubleRoundRobinGenerator{}
}

func (g *DoubleRoundRobinGenerator) Name() string {
	return "DoubleRoundRobin"
}

// Generate plays every pair twice: round 1 gives white to the alphabetically
// earlier name, round 2 repeats the pairs with colors reversed.
func (g *DoubleRoundRobinGenerator) Generate(params GenerateParams) (Schedule, error) {
	if len(params.Players) < 2 {
		return nil, ErrInsufficientPlayers
	}
	pairs := uniquePairs(params.Players)

	first := Round{Number: 1, Pairings: make([]Pairing, 0, len(pairs))}
	second := Round{Number: 2, Pairings: make([]Pairing, 0, len(pairs))}
	for _, pair := range pairs {
		white, black := pair[0], pair[1]
		if !nameLess(white, black) {
			white, black = black, white
		}
		first.Pairings = append(first.Pairings, newPairing(1, white, black))
		second.Pairings = append(second.Pairings, newPairing(2, black, white))
	}
	return Schedule{first, second}, nil
}
