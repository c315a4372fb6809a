package entity

// ClassificationResult итог бинарного классификатора.
type ClassificationResult struct {
	Label      string     // строка из ключа классификатора
	Index      int        // 0 — первый класс ключа, 1 — второй
	Confidence float64    // вероятность выбранного класса
	Threshold  float64    // порог, по которому выбран класс
	Scores     [2]float64 // вероятности обоих классов
}

// Positive true, если выбран второй класс ключа.
func (r ClassificationResult) Positive() bool {
	return r.Index == 1
}

// GrowthCall итог каскада для одной области.
type GrowthCall struct {
	Label  GrowthLabel
	First  ClassificationResult
	Second *ClassificationResult // nil, если вторая ступень не запускалась
}

// Confidence уверенность ступени, которая приняла окончательное решение.
func (c GrowthCall) Confidence() float64 {
	if c.Second != nil {
		return c.Second.Confidence
	}
	return c.First.Confidence
}
