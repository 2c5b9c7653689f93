package bank

import (
	"fmt"
	"sync"
)

// #region mini-ipip6

// miniIPIP6Items is the Sibley (2012) calibration, Table 2. One discrimination
// and six graded thresholds per item on the 7-point scale. Reverse-flagged
// items are worded against the trait pole.
var miniIPIP6Items = []Item{
	// Extraversion
	{Number: 1, Trait: Extraversion, Reverse: false, Alpha: 1.07, Beta: [6]float64{-1.85, -1.04, -0.21, 0.89, 1.98, 2.76}},
	{Number: 7, Trait: Extraversion, Reverse: true, Alpha: 0.84, Beta: [6]float64{-2.82, -1.67, -0.80, 0.10, 0.86, 1.91}},
	{Number: 19, Trait: Extraversion, Reverse: true, Alpha: 1.00, Beta: [6]float64{-2.51, -1.32, -0.49, 0.45, 1.23, 2.44}},
	{Number: 23, Trait: Extraversion, Reverse: false, Alpha: 0.92, Beta: [6]float64{-2.25, -1.27, -0.54, 0.24, 0.97, 1.96}},

	// Agreeableness
	{Number: 2, Trait: Agreeableness, Reverse: false, Alpha: 1.46, Beta: [6]float64{-3.19, -2.51, -1.86, -1.19, -0.28, 0.99}},
	{Number: 8, Trait: Agreeableness, Reverse: true, Alpha: 0.66, Beta: [6]float64{-3.74, -2.51, -1.59, -0.76, 0.22, 1.76}},
	{Number: 14, Trait: Agreeableness, Reverse: false, Alpha: 1.12, Beta: [6]float64{-3.15, -2.36, -1.70, -0.92, 0.03, 1.37}},
	{Number: 20, Trait: Agreeableness, Reverse: true, Alpha: 0.81, Beta: [6]float64{-3.77, -2.69, -1.94, -1.19, -0.28, 1.25}},

	// Conscientiousness
	{Number: 3, Trait: Conscientiousness, Reverse: false, Alpha: 0.90, Beta: [6]float64{-3.39, -2.13, -1.18, -0.27, 0.57, 1.64}},
	{Number: 10, Trait: Conscientiousness, Reverse: false, Alpha: 0.85, Beta: [6]float64{-3.49, -2.72, -2.02, -1.06, -0.20, 1.12}},
	{Number: 11, Trait: Conscientiousness, Reverse: true, Alpha: 0.77, Beta: [6]float64{-4.21, -2.93, -2.05, -1.07, -0.18, 1.38}},
	{Number: 22, Trait: Conscientiousness, Reverse: true, Alpha: 0.94, Beta: [6]float64{-2.63, -1.73, -1.17, -0.64, -0.09, 1.11}},

	// Neuroticism
	{Number: 4, Trait: Neuroticism, Reverse: false, Alpha: 1.13, Beta: [6]float64{-1.32, -0.23, 0.36, 1.04, 1.72, 2.53}},
	{Number: 15, Trait: Neuroticism, Reverse: true, Alpha: 0.77, Beta: [6]float64{-2.24, -0.70, 0.38, 1.48, 2.57, 3.92}},
	{Number: 16, Trait: Neuroticism, Reverse: false, Alpha: 0.90, Beta: [6]float64{-2.15, -0.76, 0.05, 0.89, 1.72, 2.80}},
	{Number: 17, Trait: Neuroticism, Reverse: true, Alpha: 0.65, Beta: [6]float64{-2.82, -1.01, -0.19, 0.76, 1.80, 3.15}},

	// Openness
	{Number: 5, Trait: Openness, Reverse: false, Alpha: 0.54, Beta: [6]float64{-4.22, -2.68, -1.52, -0.21, 0.94, 2.47}},
	{Number: 9, Trait: Openness, Reverse: true, Alpha: 1.10, Beta: [6]float64{-2.70, -1.72, -1.00, -0.17, 0.47, 1.61}},
	{Number: 13, Trait: Openness, Reverse: true, Alpha: 0.79, Beta: [6]float64{-3.45, -2.35, -1.56, -0.85, -0.11, 1.13}},
	{Number: 21, Trait: Openness, Reverse: true, Alpha: 1.24, Beta: [6]float64{-2.57, -1.71, -1.12, -0.29, 0.41, 1.43}},

	// Honesty-Humility
	{Number: 6, Trait: HonestyHumility, Reverse: true, Alpha: 0.91, Beta: [6]float64{-3.43, -2.67, -1.89, -1.10, -0.42, 0.71}},
	{Number: 12, Trait: HonestyHumility, Reverse: true, Alpha: 1.17, Beta: [6]float64{-2.32, -1.69, -1.08, -0.33, 0.17, 0.99}},
	{Number: 18, Trait: HonestyHumility, Reverse: true, Alpha: 1.47, Beta: [6]float64{-1.92, -1.42, -0.97, -0.52, -0.16, 0.48}},
	{Number: 24, Trait: HonestyHumility, Reverse: true, Alpha: 1.16, Beta: [6]float64{-2.08, -1.30, -0.71, -0.12, 0.31, 1.10}},
}

var miniIPIP6Once = sync.OnceValue(func() *Bank {
	b, err := NewStrict(miniIPIP6Items)
	if err != nil {
		panic(fmt.Sprintf("embedded mini-ipip6 bank: %v", err))
	}
	return b
})

// MiniIPIP6 returns the embedded default bank. Built once, shared by
// reference; callers must treat it as read-only.
func MiniIPIP6() *Bank {
	return miniIPIP6Once()
}

// #endregion mini-ipip6
