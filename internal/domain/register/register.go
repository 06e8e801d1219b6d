package register

// Dimension identifica un eje de agrupación/filtrado de un registro de acumulación.
// El conjunto es cerrado: cada dimensión mapea a una columna fija del almacén de
// movimientos mediante un switch exhaustivo, nunca por concatenación de strings.
type Dimension string

const (
	DimObject   Dimension = "object"
	DimEstimate Dimension = "estimate"
	DimWork     Dimension = "work"
	DimEmployee Dimension = "employee"
	DimPeriod   Dimension = "period" // eje temporal; agrupable, se filtra vía corte o rango
)

// Nombres de los registros de acumulación del sistema.
const (
	PlannedWork   = "planned_work"   // plan de obra: ingreso al contabilizar presupuesto, egreso al ejecutar
	WorkExecution = "work_execution" // volúmenes ejecutados (partes diarios)
	Payroll       = "payroll"        // horas y montos de mano de obra
)

// Definition describe la forma de un registro: sus dimensiones identificadoras,
// cuáles son obligatorias al contabilizar y cuáles forman la tupla de unicidad
// que usa el detector de duplicados (siempre junto con el período).
type Definition struct {
	Name       string
	Dimensions []Dimension // dimensiones id (sin período), en orden canónico
	Required   []Dimension
	Uniqueness []Dimension
}

var definitions = map[string]Definition{
	PlannedWork: {
		Name:       PlannedWork,
		Dimensions: []Dimension{DimObject, DimEstimate, DimWork},
		Required:   []Dimension{DimObject, DimWork},
		Uniqueness: []Dimension{DimObject, DimEstimate, DimWork},
	},
	WorkExecution: {
		Name:       WorkExecution,
		Dimensions: []Dimension{DimObject, DimEstimate, DimWork},
		Required:   []Dimension{DimObject, DimWork},
		Uniqueness: []Dimension{DimObject, DimEstimate, DimWork},
	},
	Payroll: {
		Name:       Payroll,
		Dimensions: []Dimension{DimObject, DimEstimate, DimEmployee},
		Required:   []Dimension{DimObject, DimEmployee},
		Uniqueness: []Dimension{DimObject, DimEstimate, DimEmployee},
	},
}

// Lookup devuelve la definición de un registro por nombre.
func Lookup(name string) (Definition, bool) {
	def, ok := definitions[name]
	return def, ok
}

// Names devuelve los nombres de todos los registros definidos, en orden estable.
func Names() []string {
	return []string{PlannedWork, WorkExecution, Payroll}
}

// Has indica si la dimensión pertenece a las dimensiones id del registro.
func (d Definition) Has(dim Dimension) bool {
	for _, dd := range d.Dimensions {
		if dd == dim {
			return true
		}
	}
	return false
}

// Groupable indica si la dimensión puede usarse para agrupar en este registro
// (las dimensiones id del registro más el período).
func (d Definition) Groupable(dim Dimension) bool {
	return dim == DimPeriod || d.Has(dim)
}
