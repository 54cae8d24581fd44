package inventory

import (
	"strings"

	"github.com/dukerupert/homestock/internal/model"
)

// Categorize returns the subcategory an item name most likely belongs to.
// Matching is case-insensitive: exact match first, then substring match.
// Falls back to model.SubMain when nothing matches.
func Categorize(itemName string) model.Subcategory {
	name := strings.ToLower(strings.TrimSpace(itemName))
	if name == "" {
		return model.SubMain
	}

	if sub, ok := exactMatch[name]; ok {
		return sub
	}

	for _, entry := range substringMatches {
		if strings.Contains(name, entry.keyword) {
			return entry.subcategory
		}
	}

	return model.SubMain
}

var exactMatch = map[string]model.Subcategory{
	// Door bottles
	"water":       model.SubDoorBottles,
	"milk":        model.SubDoorBottles,
	"juice":       model.SubDoorBottles,
	"soda":        model.SubDoorBottles,
	"soft drinks": model.SubDoorBottles,
	"ketchup":     model.SubDoorBottles,

	// Tray
	"eggs":   model.SubTray,
	"egg":    model.SubTray,
	"butter": model.SubTray,
	"cheese": model.SubTray,
	"yogurt": model.SubTray,
	"paneer": model.SubTray,

	// Main
	"leftovers":   model.SubMain,
	"cooked food": model.SubMain,
	"fruits":      model.SubMain,
	"apples":      model.SubMain,
	"bananas":     model.SubMain,
	"grapes":      model.SubMain,

	// Vegetables
	"onion":        model.SubVegetable,
	"onions":       model.SubVegetable,
	"tomato":       model.SubVegetable,
	"tomatoes":     model.SubVegetable,
	"potato":       model.SubVegetable,
	"potatoes":     model.SubVegetable,
	"carrots":      model.SubVegetable,
	"spinach":      model.SubVegetable,
	"cucumber":     model.SubVegetable,
	"garlic":       model.SubVegetable,
	"ginger":       model.SubVegetable,
	"leafy greens": model.SubVegetable,

	// Freezer
	"ice cream":   model.SubFreezer,
	"ice cubes":   model.SubFreezer,
	"meat":        model.SubFreezer,
	"fish":        model.SubFreezer,
	"peas":        model.SubFreezer,
	"chicken":     model.SubFreezer,
	"frozen peas": model.SubFreezer,

	// Mini cooler
	"chocolate":   model.SubMiniCooler,
	"chocolates":  model.SubMiniCooler,
	"cold drinks": model.SubMiniCooler,
	"snacks":      model.SubMiniCooler,

	// Grocery
	"rice":        model.SubRice,
	"lentils":     model.SubPulses,
	"dal":         model.SubPulses,
	"chickpeas":   model.SubPulses,
	"beans":       model.SubPulses,
	"oats":        model.SubCereals,
	"cornflakes":  model.SubCereals,
	"muesli":      model.SubCereals,
	"granola":     model.SubCereals,
	"salt":        model.SubCondiments,
	"sugar":       model.SubCondiments,
	"pepper":      model.SubCondiments,
	"spices":      model.SubCondiments,
	"sauces":      model.SubCondiments,
	"vinegar":     model.SubCondiments,
	"ghee":        model.SubOils,
	"cooking oil": model.SubOils,

	// Hygiene
	"detergent":     model.SubWashing,
	"bleach":        model.SubWashing,
	"sponges":       model.SubDishwashing,
	"dish soap":     model.SubDishwashing,
	"toilet paper":  model.SubToiletCleaning,
	"air freshener": model.SubToiletCleaning,
	"diapers":       model.SubKids,
	"baby wipes":    model.SubKids,
	"mop":           model.SubGeneralCleaning,
	"paper towels":  model.SubGeneralCleaning,
	"trash bags":    model.SubGeneralCleaning,

	// Personal care
	"moisturizer": model.SubFace,
	"sunscreen":   model.SubFace,
	"powder":      model.SubFace,
	"lotion":      model.SubBody,
	"deodorant":   model.SubBody,
	"soap":        model.SubBody,
	"toothpaste":  model.SubBody,
	"razor":       model.SubBody,
	"shampoo":     model.SubHead,
	"conditioner": model.SubHead,
	"hair oil":    model.SubHead,
	"hair gel":    model.SubHead,
	"comb":        model.SubHead,
}

type substringEntry struct {
	keyword     string
	subcategory model.Subcategory
}

// Ordered with longer/more-specific keywords first for deterministic priority.
var substringMatches = []substringEntry{
	// Multi-word phrases that would otherwise hit a shorter keyword
	{"dishwasher", model.SubDishwashing},
	{"dish soap", model.SubDishwashing},
	{"dish wash", model.SubDishwashing},
	{"baby shampoo", model.SubKids},
	{"baby soap", model.SubKids},
	{"baby", model.SubKids},
	{"face wash", model.SubFace},
	{"face cream", model.SubFace},
	{"body wash", model.SubBody},
	{"body lotion", model.SubBody},
	{"hair", model.SubHead},
	{"toilet", model.SubToiletCleaning},
	{"fabric softener", model.SubWashing},
	{"stain remover", model.SubWashing},
	{"laundry", model.SubWashing},
	{"glass cleaner", model.SubGeneralCleaning},
	{"floor cleaner", model.SubGeneralCleaning},
	{"cleaner", model.SubGeneralCleaning},
	{"olive oil", model.SubOils},
	{"coconut oil", model.SubOils},
	{"sunflower oil", model.SubOils},
	{"ice cream", model.SubFreezer},
	{"frozen", model.SubFreezer},

	// Bottled drinks
	{"water", model.SubDoorBottles},
	{"juice", model.SubDoorBottles},
	{"milk", model.SubDoorBottles},
	{"soda", model.SubDoorBottles},
	{"drink", model.SubDoorBottles},

	// Tray
	{"yogurt", model.SubTray},
	{"cheese", model.SubTray},
	{"butter", model.SubTray},
	{"egg", model.SubTray},

	// Grocery
	{"basmati", model.SubRice},
	{"rice", model.SubRice},
	{"lentil", model.SubPulses},
	{"bean", model.SubPulses},
	{"chickpea", model.SubPulses},
	{"flakes", model.SubCereals},
	{"cereal", model.SubCereals},
	{"oat", model.SubCereals},
	{"sauce", model.SubCondiments},
	{"spice", model.SubCondiments},
	{"masala", model.SubCondiments},
	{"oil", model.SubOils},

	// Vegetables
	{"greens", model.SubVegetable},
	{"vegetable", model.SubVegetable},
	{"potato", model.SubVegetable},
	{"tomato", model.SubVegetable},
	{"onion", model.SubVegetable},

	// Personal care
	{"deodorant", model.SubBody},
	{"lotion", model.SubBody},
	{"soap", model.SubBody},
	{"shampoo", model.SubHead},
	{"conditioner", model.SubHead},
	{"cream", model.SubFace},
	{"detergent", model.SubWashing},
	{"chocolate", model.SubMiniCooler},
}
