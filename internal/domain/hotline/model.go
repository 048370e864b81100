// internal/domain/hotline/model.go

package hotline

// Category is the fixed taxonomy a hotline belongs to.
type Category string

const (
	CategoryPolice     Category = "police"
	CategoryFire       Category = "fire"
	CategoryMedical    Category = "medical"
	CategoryGovernment Category = "government"
	CategoryUtility    Category = "utility"
)

// Display order of the directory: police first, then medical, fire,
// government, utility. Unknown categories sink to the end.
var categoryRank = map[Category]int{
	CategoryPolice:     0,
	CategoryMedical:    1,
	CategoryFire:       2,
	CategoryGovernment: 3,
	CategoryUtility:    4,
}

// Rank returns the sort rank of a category.
func (c Category) Rank() int {
	if rank, ok := categoryRank[c]; ok {
		return rank
	}
	return len(categoryRank)
}

// Category group labels shown to users. Each label maps to the set of
// underlying hotline categories it represents.
const (
	GroupAll        = "All Hotlines"
	GroupEmergency  = "Emergency Hotlines"
	GroupMedical    = "Medical Hotlines"
	GroupGovernment = "Government Hotlines"
	GroupUtility    = "Utility Hotlines"
)

var categoryGroups = map[string][]Category{
	GroupEmergency:  {CategoryPolice, CategoryFire},
	GroupMedical:    {CategoryMedical},
	GroupGovernment: {CategoryGovernment},
	GroupUtility:    {CategoryUtility},
}

// GroupCategories returns the category set a group label represents. The
// "All Hotlines" label, an empty label, and any unknown label place no
// constraint and return ok=false.
func GroupCategories(group string) (map[Category]bool, bool) {
	categories, ok := categoryGroups[group]
	if !ok {
		return nil, false
	}
	set := make(map[Category]bool, len(categories))
	for _, c := range categories {
		set[c] = true
	}
	return set, true
}

// Hotline is a single directory entry. The Province and RegionName fields are
// free text from the dataset and must be normalized before being compared
// against the hierarchy; they are not assumed consistent with it.
type Hotline struct {
	Name             string   `json:"hotlineName"`
	Number           string   `json:"hotlineNumber"`
	AlternateNumbers []string `json:"alternateNumbers"`
	Category         Category `json:"category"`
	City             string   `json:"city"`
	Province         string   `json:"province"`
	RegionName       string   `json:"regionName"`
}

// Document is the wire envelope of the hotline dataset.
type Document struct {
	Hotlines []Hotline `json:"hotlines"`
}
