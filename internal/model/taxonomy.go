package model

import (
	"fmt"
	"strings"
)

type Category string

const (
	CategoryFridge       Category = "FRIDGE"
	CategoryGrocery      Category = "GROCERY"
	CategoryHygiene      Category = "HYGIENE"
	CategoryPersonalCare Category = "PERSONAL_CARE"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryFridge, CategoryGrocery, CategoryHygiene, CategoryPersonalCare}

type categoryInfo struct {
	displayName string
	iconKey     string
}

var categoryTable = map[Category]categoryInfo{
	CategoryFridge:       {"Fridge", "kitchen"},
	CategoryGrocery:      {"Grocery", "local_grocery_store"},
	CategoryHygiene:      {"Hygiene", "cleaning_services"},
	CategoryPersonalCare: {"Personal Care", "face_retouching_natural"},
}

func (c Category) DisplayName() string { return categoryTable[c].displayName }

// IconKey is an opaque asset name resolved by the presentation layer.
func (c Category) IconKey() string { return categoryTable[c].iconKey }

func (c Category) Valid() bool {
	_, ok := categoryTable[c]
	return ok
}

// Subcategories returns the subcategories belonging to c, in display order.
func (c Category) Subcategories() []Subcategory {
	var out []Subcategory
	for _, s := range Subcategories {
		if s.Category() == c {
			out = append(out, s)
		}
	}
	return out
}

type Subcategory string

const (
	SubDoorBottles     Subcategory = "DOOR_BOTTLES"
	SubTray            Subcategory = "TRAY"
	SubMain            Subcategory = "MAIN"
	SubVegetable       Subcategory = "VEGETABLE"
	SubFreezer         Subcategory = "FREEZER"
	SubMiniCooler      Subcategory = "MINI_COOLER"
	SubRice            Subcategory = "RICE"
	SubPulses          Subcategory = "PULSES"
	SubCereals         Subcategory = "CEREALS"
	SubCondiments      Subcategory = "CONDIMENTS"
	SubOils            Subcategory = "OILS"
	SubWashing         Subcategory = "WASHING"
	SubDishwashing     Subcategory = "DISHWASHING"
	SubToiletCleaning  Subcategory = "TOILET_CLEANING"
	SubKids            Subcategory = "KIDS"
	SubGeneralCleaning Subcategory = "GENERAL_CLEANING"
	SubFace            Subcategory = "FACE"
	SubBody            Subcategory = "BODY"
	SubHead            Subcategory = "HEAD"
)

// Subcategories lists every subcategory in display order.
var Subcategories = []Subcategory{
	SubDoorBottles, SubTray, SubMain, SubVegetable, SubFreezer, SubMiniCooler,
	SubRice, SubPulses, SubCereals, SubCondiments, SubOils,
	SubWashing, SubDishwashing, SubToiletCleaning, SubKids, SubGeneralCleaning,
	SubFace, SubBody, SubHead,
}

type subcategoryInfo struct {
	displayName string
	iconKey     string
	category    Category
	samples     []string
}

var subcategoryTable = map[Subcategory]subcategoryInfo{
	SubDoorBottles: {"Door Bottles", "water_bottle", CategoryFridge, []string{"Water Bottles", "Juice", "Milk", "Soft Drinks"}},
	SubTray:        {"Tray Section", "breakfast_dining", CategoryFridge, []string{"Eggs", "Butter", "Cheese", "Yogurt"}},
	SubMain:        {"Main Section", "kitchen", CategoryFridge, []string{"Leftovers", "Cooked Food", "Fruits", "Vegetables"}},
	SubVegetable:   {"Vegetable Section", "eco", CategoryFridge, []string{"Onions", "Tomatoes", "Potatoes", "Leafy Greens"}},
	SubFreezer:     {"Freezer", "ac_unit", CategoryFridge, []string{"Ice Cream", "Frozen Vegetables", "Meat", "Ice Cubes"}},
	SubMiniCooler:  {"Mini Cooler", "icecream", CategoryFridge, []string{"Cold Drinks", "Snacks", "Chocolates"}},

	SubRice:       {"Rice Items", "rice_bowl", CategoryGrocery, []string{"Basmati Rice", "Brown Rice", "Jasmine Rice", "Wild Rice"}},
	SubPulses:     {"Pulses", "grain", CategoryGrocery, []string{"Lentils", "Chickpeas", "Black Beans", "Kidney Beans"}},
	SubCereals:    {"Cereals", "bakery_dining", CategoryGrocery, []string{"Oats", "Cornflakes", "Wheat Flakes", "Muesli"}},
	SubCondiments: {"Condiments", "local_dining", CategoryGrocery, []string{"Salt", "Sugar", "Spices", "Sauces"}},
	SubOils:       {"Oils", "opacity", CategoryGrocery, []string{"Cooking Oil", "Olive Oil", "Coconut Oil", "Ghee"}},

	SubWashing:         {"Washing", "local_laundry_service", CategoryHygiene, []string{"Detergent", "Fabric Softener", "Stain Remover"}},
	SubDishwashing:     {"Dishwashing", "restaurant", CategoryHygiene, []string{"Dish Soap", "Dishwasher Tablets", "Sponges"}},
	SubToiletCleaning:  {"Toilet Cleaning", "wc", CategoryHygiene, []string{"Toilet Cleaner", "Toilet Paper", "Air Freshener"}},
	SubKids:            {"Kids", "child_care", CategoryHygiene, []string{"Diapers", "Baby Wipes", "Baby Shampoo"}},
	SubGeneralCleaning: {"General Cleaning", "auto_awesome", CategoryHygiene, []string{"All-Purpose Cleaner", "Floor Cleaner", "Glass Cleaner"}},

	SubFace: {"Face", "face", CategoryPersonalCare, []string{"CC Cream", "Powder", "Face Wash", "Moisturizer"}},
	SubBody: {"Body", "accessibility_new", CategoryPersonalCare, []string{"Lotion", "Deodorant", "Bathing Soap", "Body Wash"}},
	SubHead: {"Head", "psychology", CategoryPersonalCare, []string{"Shampoo", "Conditioner", "Hair Oil", "Hair Gel"}},
}

// Category returns the parent category. The mapping is fixed and total over
// valid subcategories.
func (s Subcategory) Category() Category { return subcategoryTable[s].category }

func (s Subcategory) DisplayName() string { return subcategoryTable[s].displayName }

func (s Subcategory) IconKey() string { return subcategoryTable[s].iconKey }

func (s Subcategory) Valid() bool {
	_, ok := subcategoryTable[s]
	return ok
}

// SampleItems returns the default item names seeded for s.
func (s Subcategory) SampleItems() []string {
	samples := subcategoryTable[s].samples
	out := make([]string, len(samples))
	copy(out, samples)
	return out
}

// ParseSubcategory accepts the enum name in any case, e.g. "door_bottles".
func ParseSubcategory(v string) (Subcategory, error) {
	s := Subcategory(strings.ToUpper(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown subcategory %q", v)
	}
	return s, nil
}

func ParseCategory(v string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(v)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", v)
	}
	return c, nil
}
