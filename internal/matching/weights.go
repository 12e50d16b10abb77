package matching

// Weights defines the share of the final 0-100 match score contributed by
// each scoring dimension. The defaults sum to 100; custom weights are taken
// as given and are expected to sum to 100 as well.
type Weights struct {
	Skills   int `mapstructure:"skills"`
	Veteran  int `mapstructure:"veteran"`
	Location int `mapstructure:"location"`
	Salary   int `mapstructure:"salary"`
	JobType  int `mapstructure:"job-type"`
}

// DefaultWeights returns the production weighting: skills dominate, veteran
// affinity is second, the remaining dimensions split the rest.
func DefaultWeights() Weights {
	return Weights{
		Skills:   35,
		Veteran:  25,
		Location: 15,
		Salary:   15,
		JobType:  10,
	}
}

func (w Weights) Total() int {
	return w.Skills + w.Veteran + w.Location + w.Salary + w.JobType
}
