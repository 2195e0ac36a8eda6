package dietplan

// MealSlot is one position of the daily meal template.
type MealSlot struct {
	Name  string
	Icon  string
	Time  string
	Ratio float64
	Type  SlotType
}

const DefaultMealsPerDay = 4

var mealTemplates = map[int][]MealSlot{
	3: {
		{Name: "Breakfast", Icon: "sunny", Time: "07:30", Ratio: 0.30, Type: SlotBreakfast},
		{Name: "Lunch", Icon: "restaurant", Time: "12:30", Ratio: 0.40, Type: SlotMain},
		{Name: "Dinner", Icon: "moon", Time: "19:30", Ratio: 0.30, Type: SlotMain},
	},
	4: {
		{Name: "Breakfast", Icon: "sunny", Time: "07:30", Ratio: 0.25, Type: SlotBreakfast},
		{Name: "Lunch", Icon: "restaurant", Time: "12:30", Ratio: 0.35, Type: SlotMain},
		{Name: "Afternoon snack", Icon: "cafe", Time: "16:00", Ratio: 0.15, Type: SlotSnack},
		{Name: "Dinner", Icon: "moon", Time: "19:30", Ratio: 0.25, Type: SlotMain},
	},
	5: {
		{Name: "Breakfast", Icon: "sunny", Time: "07:30", Ratio: 0.20, Type: SlotBreakfast},
		{Name: "Morning snack", Icon: "nutrition", Time: "10:00", Ratio: 0.10, Type: SlotSnack},
		{Name: "Lunch", Icon: "restaurant", Time: "12:30", Ratio: 0.30, Type: SlotMain},
		{Name: "Afternoon snack", Icon: "cafe", Time: "16:00", Ratio: 0.15, Type: SlotSnack},
		{Name: "Dinner", Icon: "moon", Time: "19:30", Ratio: 0.25, Type: SlotMain},
	},
	6: {
		{Name: "Breakfast", Icon: "sunny", Time: "07:30", Ratio: 0.20, Type: SlotBreakfast},
		{Name: "Morning snack", Icon: "nutrition", Time: "10:00", Ratio: 0.10, Type: SlotSnack},
		{Name: "Lunch", Icon: "restaurant", Time: "12:30", Ratio: 0.25, Type: SlotMain},
		{Name: "Afternoon snack", Icon: "cafe", Time: "16:00", Ratio: 0.10, Type: SlotSnack},
		{Name: "Dinner", Icon: "moon", Time: "19:30", Ratio: 0.25, Type: SlotMain},
		{Name: "Supper", Icon: "bed", Time: "21:30", Ratio: 0.10, Type: SlotSnack},
	},
}

// MealTemplate returns the slots for mealsPerDay. Unsupported counts use the
// 4-meal template.
func MealTemplate(mealsPerDay int) []MealSlot {
	slots, ok := mealTemplates[mealsPerDay]
	if !ok {
		slots = mealTemplates[DefaultMealsPerDay]
	}
	return append([]MealSlot(nil), slots...)
}

// SupportedMealsPerDay reports whether a template exists for the count.
func SupportedMealsPerDay(mealsPerDay int) bool {
	_, ok := mealTemplates[mealsPerDay]
	return ok
}
