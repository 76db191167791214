// Package delivery holds the driver order state machine and the workflow
// actions that move an order through it.
package delivery

import "github.com/01moynul/taptoeat-golang/internal/models"

// transitions lists every status an order may move to from a given status.
// Navigation states may be skipped; cancelled is reachable from every
// non-terminal status.
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.OrderAvailable: {models.OrderAssigned, models.OrderCancelled},
	models.OrderAssigned: {
		models.OrderOnRouteToVendor, models.OrderArrivedAtVendor,
		models.OrderAvailable, models.OrderCancelled,
	},
	models.OrderOnRouteToVendor: {models.OrderArrivedAtVendor, models.OrderCancelled},
	models.OrderArrivedAtVendor: {models.OrderPickedUp, models.OrderCancelled},
	models.OrderPickedUp: {
		models.OrderOnRouteToCustomer, models.OrderArrivedAtCustomer, models.OrderCancelled,
	},
	models.OrderOnRouteToCustomer: {models.OrderArrivedAtCustomer, models.OrderCancelled},
	models.OrderArrivedAtCustomer: {models.OrderDelivered, models.OrderCancelled},
	models.OrderDelivered:         nil,
	models.OrderCancelled:         nil,
}

var statusNames = map[models.OrderStatus]string{
	models.OrderAvailable:         "Available",
	models.OrderAssigned:          "Assigned",
	models.OrderOnRouteToVendor:   "On the way to restaurant",
	models.OrderArrivedAtVendor:   "At restaurant",
	models.OrderPickedUp:          "Picked up",
	models.OrderOnRouteToCustomer: "On the way to customer",
	models.OrderArrivedAtCustomer: "At customer",
	models.OrderDelivered:         "Delivered",
	models.OrderCancelled:         "Cancelled",
}

var workflowSteps = map[models.OrderStatus]int{
	models.OrderAssigned:          0,
	models.OrderOnRouteToVendor:   0,
	models.OrderArrivedAtVendor:   1,
	models.OrderPickedUp:          2,
	models.OrderOnRouteToCustomer: 2,
	models.OrderArrivedAtCustomer: 3,
	models.OrderDelivered:         4,
}

func Valid(s models.OrderStatus) bool {
	_, ok := transitions[s]
	return ok
}

func IsTerminal(s models.OrderStatus) bool {
	return s == models.OrderDelivered || s == models.OrderCancelled
}

func CanTransition(from, to models.OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// WorkflowStep maps a status to the driver's progress step (0 navigate to
// pickup, 1 confirm pickup, 2 navigate to customer, 3 confirm delivery,
// 4 completed). Available and cancelled orders have no step.
func WorkflowStep(s models.OrderStatus) (int, bool) {
	step, ok := workflowSteps[s]
	return step, ok
}

func DisplayName(s models.OrderStatus) string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return string(s)
}
