package fixed

var (
	NegOne = FromInt(-1, 0)
	Zero   = FromInt(0, 0)
	One    = FromInt(1, 0)
	Two    = FromInt(2, 0)

	PointFive = FromInt64(5, 1)
	Hundred   = FromInt(100, 0)

	// sqrt(252), used to annualize daily return statistics.
	Sqrt252 = FromInt64(1587450786638754, 14)
)
